// Package applog writes one JSON object per line through the standard logger.
package applog

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type ctxKey struct{}

// RequestMeta is attached to the request context by the access log middleware.
type RequestMeta struct {
	ReqID  string
	IP     string
	Method string
	Path   string
	UserID string
}

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// WithMeta returns a context carrying m.
func WithMeta(ctx context.Context, m *RequestMeta) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// Meta returns the request metadata stored in ctx, or nil.
func Meta(ctx context.Context) *RequestMeta {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(ctxKey{}).(*RequestMeta)
	return m
}

func write(ctx context.Context, level, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if m := Meta(ctx); m != nil {
		e.ReqID = m.ReqID
		e.IP = m.IP
		e.Method = m.Method
		e.Path = m.Path
		e.UserID = m.UserID
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(ctx context.Context, action string, fields map[string]any) {
	write(ctx, "info", action, nil, fields)
}

func Audit(ctx context.Context, action string, fields map[string]any) {
	write(ctx, "audit", action, nil, fields)
}

func Security(ctx context.Context, action string, fields map[string]any) {
	write(ctx, "warn", action, nil, fields)
}

func Error(ctx context.Context, action string, err error, fields map[string]any) {
	write(ctx, "error", action, err, fields)
}

// Access logs a finished request.
func Access(ctx context.Context, status int, latency time.Duration) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: "info", Action: "http.access", Status: status, LatencyMs: latency.Milliseconds()}
	if m := Meta(ctx); m != nil {
		e.ReqID = m.ReqID
		e.IP = m.IP
		e.Method = m.Method
		e.Path = m.Path
		e.UserID = m.UserID
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}
