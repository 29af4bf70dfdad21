package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shareit/internal/models"
)

var (
	ErrMissingActor = fmt.Errorf("header %s is required", models.HeaderUserID)
	ErrInvalidActor = fmt.Errorf("header %s must be a positive integer", models.HeaderUserID)
)

// ActorID reads the trusted caller id from the X-Sharer-User-Id header.
func ActorID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return 0, ErrMissingActor
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidActor
	}
	return id, nil
}

// ParsePage reads from/size, applying defaults when absent.
func ParsePage(q url.Values) (models.Page, error) {
	page := models.DefaultPage()

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return page, errors.New("from must be a non-negative integer")
		}
		page.From = from
	}
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return page, errors.New("size must be a positive integer")
		}
		page.Size = size
	}
	return page, nil
}

// PathID parses a positive int64 path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}
