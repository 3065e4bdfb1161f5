package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"pdv/internal/apierror"
	"pdv/internal/infra"
	"pdv/internal/middleware"
	"pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// centavos: money columns are NUMERIC(12,2); sub-cent values would be
	// rounded by the database and break totals.
	_ = validate.RegisterValidation("centavos", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 {
			return true
		}
		d := decimal.NewFromFloat(fl.Field().Float())
		return d.Equal(d.Round(2))
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{name: "int"}))
		return 0, false
	}
	return id, true
}

// respondError maps service and store errors to HTTP status codes. Anything
// not recognised is a 400 carrying the error text.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrAutenticacao):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNaoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, infra.ErrIdempotencyEmAndamento):
		status = http.StatusConflict
	}
	log.Warn().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Int("status", status).
		Err(err).
		Msg("request failed")
	c.JSON(status, apierror.New(err.Error()))
}
