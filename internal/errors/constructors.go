package errors

// Convenience constructors for common error patterns

// Config errors

func ConfigNotFound(path string) *SyncError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *SyncError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func TokenMissing(envVar string) *SyncError {
	return New(CategoryConfig, SeverityFatal, "GitHub token not set").
		WithContext("env", envVar)
}

// Network and HTTP errors

func NetworkFailed(url string, cause error) *SyncError {
	return Wrap(cause, CategoryNetwork, SeverityFatal, "request failed").
		WithContext("url", url)
}

// HTTPStatus builds an error for a non-success response. A 401 gains a hint
// about token permissions since that is the most common operator mistake.
func HTTPStatus(url string, status int, snippet string) *SyncError {
	e := New(CategoryHTTP, SeverityFatal, "unexpected HTTP status").
		WithContext("url", url).
		WithContext("status", status).
		WithContext("body", snippet)
	if status == 401 || status == 403 {
		e = e.WithContext("hint", "check that the token is valid and has repo read permissions")
	}
	return e
}

// Content errors

func ParseFailed(what string, cause error) *SyncError {
	return Wrap(cause, CategoryParse, SeverityFatal, "parse failed").
		WithContext("input", what)
}

func WriteFailed(path string, cause error) *SyncError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "write failed").
		WithContext("path", path)
}

func ReadFailed(path string, cause error) *SyncError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "read failed").
		WithContext("path", path)
}

// Infrastructure errors

func StateError(operation string, cause error) *SyncError {
	return Wrap(cause, CategoryState, SeverityError, "state store operation failed").
		WithContext("operation", operation)
}

func GitError(operation string, cause error) *SyncError {
	return Wrap(cause, CategoryGit, SeverityError, "git operation failed").
		WithContext("operation", operation)
}
