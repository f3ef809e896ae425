package errmsg

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type Category string

const (
	CategoryNone          Category = ""
	CategoryImageTooLarge Category = "image_too_large"
	CategoryNotAuthorized Category = "not_authorized"
	CategoryTimedOut      Category = "timed_out"
	CategoryNetwork       Category = "network"
	CategoryNotFound      Category = "not_found"
	CategoryDuplicate     Category = "duplicate"
	CategoryUploadNetwork Category = "upload_network"
	CategoryGeneric       Category = "generic"
)

// Messages shown to the user for each category.
var Messages = map[Category]string{
	CategoryImageTooLarge: "Image is too large. Please use an image under 1.5MB or try a smaller file.",
	CategoryNotAuthorized: "You are not authorized to perform this action. Please verify your admin access.",
	CategoryTimedOut:      "The request timed out. Please check your connection and try again.",
	CategoryNetwork:       "Network error. Please check your internet connection and try again.",
	CategoryNotFound:      "The item was not found. It may have been deleted. Please refresh and try again.",
	CategoryDuplicate:     "An item with this name already exists. Please use a different name.",
	CategoryUploadNetwork: "Image upload failed due to a network issue. Please try again.",
	CategoryGeneric:       "An unexpected error occurred. Please try again.",
}

// maxVerbatimLen is the longest unrecognised message passed through to the user.
const maxVerbatimLen = 200

// Translator turns an arbitrary failure value into one user-safe message.
type Translator interface {
	Translate(err any) string
}

// Rule maps a message predicate to a category.
type Rule struct {
	Category Category
	Match    func(lower string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// DefaultRules are evaluated in order; the first match wins.
var DefaultRules = []Rule{
	{CategoryImageTooLarge, containsAny("size", "limit", "too large", "exceeds", "payload too large", "request entity too large")},
	{CategoryNotAuthorized, containsAny("unauthorized", "only admin")},
	{CategoryTimedOut, containsAny("timeout", "timed out")},
	{CategoryNetwork, containsAny("network", "fetch", "connection", "failed to fetch")},
	{CategoryNotFound, containsAny("not found")},
	{CategoryDuplicate, containsAny("already exists")},
	{CategoryUploadNetwork, containsAny("response body")},
}

// Classifier is the rule-list Translator.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

var defaultClassifier = NewClassifier(DefaultRules)

func Default() *Classifier {
	return defaultClassifier
}

// Classify returns the category of err, CategoryGeneric when nothing matches
// and CategoryNone for an empty message.
func (c *Classifier) Classify(err any) Category {
	message := Extract(err)
	if message == "" {
		return CategoryNone
	}
	lower := strings.ToLower(message)
	for _, rule := range c.rules {
		if rule.Match(lower) {
			return rule.Category
		}
	}
	return CategoryGeneric
}

func (c *Classifier) Translate(err any) string {
	message := Extract(err)
	if message == "" {
		return Messages[CategoryGeneric]
	}

	category := c.Classify(message)
	if category != CategoryGeneric {
		return Messages[category]
	}

	if len(message) < maxVerbatimLen {
		return "Error: " + message
	}
	return Messages[CategoryGeneric]
}

func Translate(err any) string {
	return defaultClassifier.Translate(err)
}

func Classify(err any) Category {
	return defaultClassifier.Classify(err)
}

// Retryable reports whether another attempt could change the outcome.
func Retryable(err error) bool {
	switch Classify(err) {
	case CategoryNotAuthorized, CategoryNotFound, CategoryDuplicate, CategoryImageTooLarge:
		return false
	}
	return true
}

// Extract pulls a message out of a string, an error, a struct with a
// Message/StorageError/Error field or a map with one of those keys. For an
// error the wrap chain is searched for a StorageError field first.
func Extract(err any) string {
	if err == nil {
		return ""
	}

	switch v := err.(type) {
	case string:
		return v
	case error:
		for e := error(v); e != nil; e = errors.Unwrap(e) {
			if s, ok := stringField(e, "StorageError"); ok {
				return s
			}
		}
		return v.Error()
	case map[string]any:
		for _, key := range []string{"message", "StorageError", "error"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
		return fmt.Sprint(v)
	case map[string]string:
		for _, key := range []string{"message", "StorageError", "error"} {
			if s, ok := v[key]; ok {
				return s
			}
		}
		return fmt.Sprint(v)
	}

	if s, ok := stringField(err, "Message", "StorageError", "Error"); ok {
		return s
	}
	if isNilPointer(err) {
		return ""
	}
	return fmt.Sprint(err)
}

// stringField returns the first named string field of the struct behind x.
func stringField(x any, names ...string) (string, bool) {
	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", false
	}
	for _, name := range names {
		f := rv.FieldByName(name)
		if f.IsValid() && f.Kind() == reflect.String {
			return f.String(), true
		}
	}
	return "", false
}

func isNilPointer(x any) bool {
	rv := reflect.ValueOf(x)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
