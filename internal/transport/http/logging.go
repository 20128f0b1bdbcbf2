package http

import (
	"encoding/json"
	"log"
	"mime"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
)

const (
	requestBodyLogKey = "http.request.body.summary"
	maxLoggedValue    = 512
)

type accessLogEntry struct {
	Time      string      `json:"time"`
	RequestID string      `json:"request_id"`
	UserUUID  string      `json:"user_uuid"`
	Method    string      `json:"method"`
	URI       string      `json:"uri"`
	Status    int         `json:"status"`
	LatencyMS int64       `json:"latency_ms"`
	Body      interface{} `json:"body,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// registerLogging emits one JSON line per request on the standard logger.
// Request bodies are summarized with credentials redacted and file payloads
// reduced to size markers; response bodies are never logged.
func registerLogging(e *echo.Echo) {
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, _ []byte) {
		if summary := summarizeRequestBody(c, reqBody); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := accessLogEntry{
				Time:      v.StartTime.Format(time.RFC3339),
				RequestID: v.RequestID,
				UserUUID:  "anonymous",
				Method:    v.Method,
				URI:       v.URI,
				Status:    v.Status,
				LatencyMS: v.Latency.Milliseconds(),
			}
			if user, ok := c.Get(contextUserKey).(*domain.User); ok && user != nil {
				entry.UserUUID = user.ID.String()
			}
			if body := c.Get(requestBodyLogKey); body != nil {
				entry.Body = body
			}
			if v.Error != nil {
				entry.Error = v.Error.Error()
			}

			line, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			log.Println(string(line))
			return nil
		},
	}))
}

func summarizeRequestBody(c echo.Context, body []byte) interface{} {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	switch {
	case mediaType == echo.MIMEApplicationJSON:
		return summarizeJSON(body)
	case mediaType == echo.MIMEApplicationForm:
		return summarizeForm(body)
	case strings.HasPrefix(mediaType, "multipart/"):
		return summarizeMultipart(c)
	default:
		return nil
	}
}

func summarizeJSON(body []byte) interface{} {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	return redactValue(data, "")
}

func summarizeForm(body []byte) interface{} {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil
	}
	fields := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if isSecretField(key) {
			fields[key] = "redacted"
			continue
		}
		if len(vals) == 1 {
			fields[key] = clampValue(vals[0])
		} else {
			fields[key] = len(vals)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// summarizeMultipart relies on the form already parsed by the handler. File
// parts are logged as "<filename> (<size> bytes)"; scalar fields follow the
// redaction rules.
func summarizeMultipart(c echo.Context) interface{} {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	fields := make(map[string]interface{}, len(form.Value)+len(form.File))
	for key, vals := range form.Value {
		if isSecretField(key) {
			fields[key] = "redacted"
			continue
		}
		if len(vals) == 1 {
			fields[key] = clampValue(vals[0])
		} else {
			fields[key] = len(vals)
		}
	}
	for key, headers := range form.File {
		names := make([]string, 0, len(headers))
		for _, header := range headers {
			names = append(names, header.Filename+" ("+byteCount(header.Size)+")")
		}
		fields[key] = names
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func redactValue(value interface{}, keyHint string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			if isSecretField(key) {
				out[key] = "redacted"
				continue
			}
			out[key] = redactValue(val, key)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactValue(item, keyHint)
		}
		return out
	case string:
		if isSecretField(keyHint) {
			return "redacted"
		}
		return clampValue(v)
	default:
		return v
	}
}

func isSecretField(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "password") || strings.Contains(lower, "token")
}

func clampValue(value string) string {
	if len(value) <= maxLoggedValue {
		return value
	}
	clamped := value[:maxLoggedValue]
	for !utf8.ValidString(clamped) && len(clamped) > 0 {
		clamped = clamped[:len(clamped)-1]
	}
	return clamped + "...(truncated)"
}

func byteCount(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatInt(size/div, 10) + []string{" KB", " MB", " GB"}[exp]
}
