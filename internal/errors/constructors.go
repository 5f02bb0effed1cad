package errors

// Convenience functions for common error patterns

// Config errors

func ConfigRequired(field string) *TelemetryError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *TelemetryError {
	return New(CategoryValidation, SeverityError, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Sidecar marker errors

func MarkerNotFound(path string, cause error) *TelemetryError {
	return Wrap(cause, CategoryFileSystem, SeverityInfo, "marker not found").
		WithContext("path", path)
}

func MarkerInvalid(path, content string, cause error) *TelemetryError {
	return Wrap(cause, CategoryFileSystem, SeverityWarning, "marker does not contain a timestamp").
		WithContext("path", path).
		WithContext("content", content)
}

func MarkerWriteFailed(path string, cause error) *TelemetryError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "marker write failed").
		WithContext("path", path)
}

// Network errors

func NetworkError(url string, cause error) *TelemetryError {
	return WrapRetryable(cause, CategoryNetwork, SeverityError, "request failed").
		WithContext("url", url)
}

func UnexpectedStatus(url string, status int, statusText string) *TelemetryError {
	return New(CategoryNetwork, SeverityError, "unexpected response status").
		WithContext("url", url).
		WithContext("status", status).
		WithContext("status_text", statusText)
}

// GitHub errors

func GitHubAPIError(operation string, cause error) *TelemetryError {
	return WrapRetryable(cause, CategoryGitHub, SeverityError, "GitHub API call failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *TelemetryError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
