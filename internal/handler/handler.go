package handler

import (
	"errors"
	"net/http"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindError turns a binding failure into a ValidationError naming the first bad field
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		common.HandleServiceError(c, common.NewValidationError(fe.Field(), validationMessage(fe)))
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "잘못된 요청 형식입니다", err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 항목입니다"
	case "opinion_status":
		return "유효하지 않은 처리 상태입니다"
	case "oneof":
		return "허용되지 않는 값입니다 (" + fe.Param() + ")"
	case "max":
		return "최대 " + fe.Param() + "자까지 입력할 수 있습니다"
	case "min":
		return "최소 " + fe.Param() + "자 이상 입력해야 합니다"
	case "email":
		return "이메일 형식이 아닙니다"
	default:
		return "유효하지 않은 값입니다"
	}
}

// actorOrAbort returns the authenticated actor or writes 401
func actorOrAbort(c *gin.Context) (*domain.Actor, bool) {
	actor := middleware.GetActor(c)
	if actor == nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "로그인이 필요합니다", nil)
		return nil, false
	}
	return actor, true
}
