package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/hieuit01/BTL-CCNLTHD/middlewares"
	"github.com/hieuit01/BTL-CCNLTHD/services"
	"github.com/hieuit01/BTL-CCNLTHD/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

func callerFromCtx(c *gin.Context) (services.Caller, bool) {
	v, ok := c.Get(middlewares.CtxUserID)
	if !ok {
		return services.Caller{}, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return services.Caller{}, false
	}
	return services.Caller{ID: id, Role: c.GetString(middlewares.CtxRole)}, true
}

// mustCaller writes a 401 and returns false when the request is anonymous.
func mustCaller(c *gin.Context) (services.Caller, bool) {
	caller, ok := callerFromCtx(c)
	if !ok {
		utils.SendUnauthorized(c, utils.CodeMissingToken, "Vui lòng đăng nhập.")
	}
	return caller, ok
}

// respondError maps service errors onto HTTP replies. Unknown errors are
// attached to the gin context so the request logger records them.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.SendValidationError(c, "Dữ liệu không hợp lệ.", ve.Fields)
	case errors.Is(err, services.ErrForbidden):
		utils.SendForbidden(c)
	case errors.Is(err, services.ErrNotFound):
		utils.SendNotFound(c)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.SendUnauthorized(c, utils.CodeInvalidCredentials, "Tên đăng nhập hoặc mật khẩu không đúng.")
	default:
		_ = c.Error(err)
		utils.SendDatabaseError(c)
	}
}

// bindError turns binding failures into a 400 with per-field messages.
func bindError(c *gin.Context, err error) {
	details := map[string]string{}
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			details[fieldPath(fe)] = fieldMessage(fe)
		}
	case errors.As(err, &typeErr):
		details[typeErr.Field] = "Kiểu dữ liệu không hợp lệ."
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF):
		details["body"] = "Dữ liệu JSON không hợp lệ."
	default:
		details["body"] = "Dữ liệu gửi lên không hợp lệ."
	}
	utils.SendValidationError(c, "Dữ liệu không hợp lệ.", details)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Trường này là bắt buộc."
	case "email":
		return "Email không hợp lệ."
	case "datetime":
		return "Ngày không hợp lệ, định dạng YYYY-MM-DD."
	case "oneof":
		return fmt.Sprintf("Giá trị phải là một trong: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if isString {
			return fmt.Sprintf("Độ dài tối thiểu là %s ký tự.", fe.Param())
		}
		return fmt.Sprintf("Giá trị tối thiểu là %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Độ dài tối đa là %s ký tự.", fe.Param())
		}
		return fmt.Sprintf("Giá trị tối đa là %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Giá trị phải lớn hơn %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Giá trị phải lớn hơn hoặc bằng %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Giá trị phải nhỏ hơn hoặc bằng %s.", fe.Param())
	}
	return "Giá trị không hợp lệ."
}

func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		utils.SendValidationError(c, "Dữ liệu không hợp lệ.", map[string]string{name: "Mã không hợp lệ."})
		return 0, false
	}
	return uint(v), true
}

// queryID reads an optional numeric query parameter; absent means zero.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.SendValidationError(c, "Dữ liệu không hợp lệ.", map[string]string{name: "Mã không hợp lệ."})
		return 0, false
	}
	return uint(v), true
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formUpload opens an optional multipart file. The returned closer is
// always safe to call.
func formUpload(c *gin.Context, field string) (*services.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func uploadError(c *gin.Context, field string) {
	utils.SendValidationError(c, "Dữ liệu không hợp lệ.", map[string]string{field: "Không đọc được tệp tải lên."})
}

// validate runs the binding tags on a struct filled by hand.
func validate(v any) error {
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(v)
}
