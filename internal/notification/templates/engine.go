package templates

import (
	"bytes"
	"context"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"reflect"
	"sync"
	texttmpl "text/template"
)

// Rendered holds the per-channel materialized content from a scenario template.
type Rendered struct {
	Subject   string
	EmailHTML string
	EmailText string
}

// IHandle is a runtime-typed handle to a template scenario.
// A generic Handle[T] implements this to carry compile-time data type info.
type IHandle interface {
	ID() string
	DataType() reflect.Type
}

// Handle is a generic, typed handle for a template scenario.
type Handle[T any] struct {
	id string
}

// Expect creates a typed handle for a given template ID (e.g., "account.reactivation_code").
func Expect[T any](id string) Handle[T] { return Handle[T]{id: id} }

func (h Handle[T]) ID() string { return h.id }
func (h Handle[T]) DataType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}

// Renderer is the DI-friendly interface for the engine.
type Renderer interface {
	// RenderAny renders the given template ID with arbitrary data.
	RenderAny(ctx context.Context, id string, data any) (Rendered, error)
}

// Engine compiles and renders embedded scenario templates.
type Engine struct {
	fs    fs.FS
	mu    sync.RWMutex
	cache map[string]*compiled
}

type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// NewEngine creates a template engine over the embedded template files.
func NewEngine() *Engine {
	return &Engine{
		fs:    EmbeddedFS,
		cache: make(map[string]*compiled),
	}
}

// Render is a typed helper that enforces the data type associated with the handle at compile time.
func Render[T any](ctx context.Context, e *Engine, h Handle[T], data T) (Rendered, error) {
	return e.RenderAny(ctx, h.ID(), data)
}

// RenderAny renders a scenario by ID.
func (e *Engine) RenderAny(ctx context.Context, id string, data any) (Rendered, error) {
	c, err := e.getCompiled(id)
	if err != nil {
		return Rendered{}, err
	}

	var out Rendered
	if c.text.Lookup("subject") != nil {
		if out.Subject, err = execText(c.text, "subject", data); err != nil {
			return Rendered{}, fmt.Errorf("render subject: %w", err)
		}
	}
	if c.text.Lookup("email_text") != nil {
		if out.EmailText, err = execText(c.text, "email_text", data); err != nil {
			return Rendered{}, fmt.Errorf("render email_text: %w", err)
		}
	}
	if c.html.Lookup("email_html") != nil {
		if out.EmailHTML, err = execHTML(c.html, "email_html", data); err != nil {
			return Rendered{}, fmt.Errorf("render email_html: %w", err)
		}
	}

	return out, nil
}

func (e *Engine) getCompiled(id string) (*compiled, error) {
	e.mu.RLock()
	cached, ok := e.cache[id]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := "files/" + id + ".tmpl"
	b, err := fs.ReadFile(e.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read embedded template %q: %w", path, err)
	}

	// text/template for subject and email_text, html/template for email_html
	tText, err := texttmpl.New(id).Option("missingkey=error").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse text blocks (%s): %w", id, err)
	}
	tHTML, err := htmltmpl.New(id).Option("missingkey=error").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse html block (%s): %w", id, err)
	}
	c := &compiled{text: tText, html: tHTML}

	e.mu.Lock()
	e.cache[id] = c
	e.mu.Unlock()
	return c, nil
}

func execText(t *texttmpl.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func execHTML(t *htmltmpl.Template, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
