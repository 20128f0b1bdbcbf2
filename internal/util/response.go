package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

// Validation is the 422 body shape: a stable message with per-field error
// lists.
func Validation(fieldErrors map[string][]string) Envelope {
	return Envelope{
		"message": "validation failed",
		"errors":  fieldErrors,
	}
}
