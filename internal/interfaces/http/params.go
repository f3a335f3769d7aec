package http

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"account-service/internal/domain"
	"account-service/internal/query"
)

// bindBody decodes and validates a JSON request body.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return errInvalidPayload
	}
	return c.Validate(dst)
}

func optString(c echo.Context, name string) *string {
	if v := c.QueryParam(name); v != "" {
		return &v
	}
	return nil
}

func optInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return &v, nil
}

func optBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, name)
	}
	return &v, nil
}

func optDate(c echo.Context, name string) (*domain.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidInput, name)
	}
	return &d, nil
}

// paramReader collects the first parse error so a filter can be read in one pass.
type paramReader struct {
	c   echo.Context
	err error
}

func (r *paramReader) intParam(name string) *int {
	v, err := optInt(r.c, name)
	r.keep(err)
	return v
}

func (r *paramReader) boolParam(name string) *bool {
	v, err := optBool(r.c, name)
	r.keep(err)
	return v
}

func (r *paramReader) dateParam(name string) *domain.Date {
	v, err := optDate(r.c, name)
	r.keep(err)
	return v
}

func (r *paramReader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

func userFilter(c echo.Context) (query.UserFilter, error) {
	r := &paramReader{c: c}
	f := query.UserFilter{
		ID:           optString(c, "id"),
		Name:         optString(c, "name"),
		Email:        optString(c, "email"),
		CreatedStart: r.dateParam("created_start"),
		CreatedEnd:   r.dateParam("created_end"),
		Offset:       r.intParam("offset"),
		Limit:        r.intParam("limit"),
	}
	return f, r.err
}

func applicationFilter(c echo.Context) (query.ApplicationFilter, error) {
	r := &paramReader{c: c}
	f := query.ApplicationFilter{
		ID:           optString(c, "id"),
		Name:         optString(c, "name"),
		Description:  optString(c, "description"),
		CreatedStart: r.dateParam("created_start"),
		CreatedEnd:   r.dateParam("created_end"),
		Offset:       r.intParam("offset"),
		Limit:        r.intParam("limit"),
	}
	return f, r.err
}

func keyFilter(c echo.Context) (query.KeyFilter, error) {
	r := &paramReader{c: c}
	f := query.KeyFilter{
		UserIDs:      c.QueryParams()["user_id"],
		IsBanned:     r.boolParam("is_banned"),
		CreatedStart: r.dateParam("created_start"),
		CreatedEnd:   r.dateParam("created_end"),
		Offset:       r.intParam("offset"),
		Limit:        r.intParam("limit"),
	}
	return f, r.err
}

func pagination(c echo.Context) (query.Pagination, error) {
	r := &paramReader{c: c}
	p := query.Paginate(r.intParam("offset"), r.intParam("limit"))
	return p, r.err
}
