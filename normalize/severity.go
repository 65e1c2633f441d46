package normalize

import "github.com/use-agent/scrapesheet/models"

// Classify maps a link status code to its severity. A nil code is Unknown;
// otherwise the first matching threshold wins: >=500, >=400, >=300, else
// Success.
func Classify(statusCode *int) models.Severity {
	if statusCode == nil {
		return models.SeverityUnknown
	}
	switch code := *statusCode; {
	case code >= 500:
		return models.SeverityServerError
	case code >= 400:
		return models.SeverityClientError
	case code >= 300:
		return models.SeverityRedirect
	default:
		return models.SeveritySuccess
	}
}
