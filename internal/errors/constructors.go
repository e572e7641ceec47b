package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ClassifiedError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *ClassifiedError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Document errors

func DocumentReadError(path string, cause error) *ClassifiedError {
	return WrapRetryable(cause, CategoryFileSystem, SeverityFatal, "document could not be read").
		WithContext("path", path)
}

// MalformedDocument reports a builder contract violation. These are never
// recovered from: the whole render is aborted.
func MalformedDocument(reason string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryInternal, SeverityFatal, "malformed document event stream").
		WithContext("reason", reason)
}

// Plugin errors

func PluginRenderError(plugin, fence string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryPlugin, SeverityWarning, "plugin render failed").
		WithContext("plugin", plugin).
		WithContext("fence", fence)
}

func StylesheetError(plugin string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryPlugin, SeverityFatal, "plugin stylesheet is invalid").
		WithContext("plugin", plugin)
}

// Server errors

func ListenError(addr string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryNetwork, SeverityFatal, "listener failed").
		WithContext("addr", addr)
}

// Internal errors

func InternalError(message string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
