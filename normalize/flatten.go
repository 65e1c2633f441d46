package normalize

import (
	"strings"

	"github.com/use-agent/scrapesheet/models"
)

const indentUnit = "  "

// Flatten walks a heading forest depth-first, pre-order, and returns one row
// per node. Each row's Text is prefixed with two spaces per level of nesting
// and RowID is its position in the output.
//
// The walk uses an explicit stack so arbitrarily deep trees cannot exhaust
// the goroutine stack.
func Flatten(forest models.HeadingForest) []models.HeadingRow {
	rows := make([]models.HeadingRow, 0, len(forest))

	type frame struct {
		node  *models.HeadingNode
		depth int
	}

	// Push in reverse so the first sibling is popped first.
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &forest[i], depth: 0})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rows = append(rows, models.HeadingRow{
			RowID: len(rows),
			Level: top.node.Level.Value,
			Text:  strings.Repeat(indentUnit, top.depth) + top.node.Text.Value,
		})

		children := top.node.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &children[i], depth: top.depth + 1})
		}
	}
	return rows
}
