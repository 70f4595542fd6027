// Package http provides http transport for the cdr module
package http

import (
	stdhttp "net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"callog/internal/modkit/httpkit"
	perr "callog/internal/platform/errors"
	"callog/internal/platform/net/http/bind"
	"callog/internal/services/cdr/domain"
	svc "callog/internal/services/cdr/service"
)

// Register mounts cdr endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /cdr CDR cdrList
// @Summary List call detail records
// @Tags CDR
// @Produce json
// @Param from query string false "RFC 3339 lower bound on start"
// @Param until query string false "RFC 3339 upper bound on start (exclusive)"
// @Param order query string false "Sort key" Enums(start, answer, end, source_name, source_extension, destination_name, destination_extension, direction, duration, answered)
// @Param direction query string false "Sort direction" Enums(asc, desc)
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Param search query string false "Free text over names and extensions"
// @Success 200 {array} domain.CDR "ok"
// @Router /cdr [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	in, err := bindListInput(r)
	if err != nil {
		return nil, err
	}
	items, total, err := h.svc.List(r.Context(), in)
	if err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = svc.DefaultLimit
	}
	return httpkit.List(items, total, limit, in.Offset), nil
}

// swagger:route GET /cdr/{id} CDR cdrGet
// @Summary Fetch one call detail record
// @Tags CDR
// @Produce json
// @Param id path string true "Call log id"
// @Success 200 {object} domain.CDR "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /cdr/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

func bindListInput(r *stdhttp.Request) (domain.ListInput, error) {
	q := r.URL.Query()
	in := domain.ListInput{
		From:      q.Get("from"),
		Until:     q.Get("until"),
		Order:     q.Get("order"),
		Direction: q.Get("direction"),
		Search:    q.Get("search"),
	}
	var err error
	if in.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return in, err
	}
	if in.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return in, err
	}
	if err := bind.Struct(&in); err != nil {
		return in, err
	}
	return in, nil
}

func intParam(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, perr.Validationf("%s must be an integer", name)
	}
	return n, nil
}
