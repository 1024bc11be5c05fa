package routes

import (
	"reflect"
	"strings"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/handler"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Auth    *handler.AuthHandler
	Opinion *handler.OpinionHandler
	Admin   *handler.AdminHandler
	User    *handler.UserHandler
	Lookup  *handler.LookupHandler
}

// RegisterValidators installs the custom binding tags and reports
// json field names in validation errors
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("opinion_status", func(fl validator.FieldLevel) bool {
		return domain.IsValidStatus(fl.Field().String())
	})
}

// Setup configures all API routes
// limit (optional) guards login and submission
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, limit gin.HandlerFunc) {
	RegisterValidators()
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	api := router.Group("/api/v1")

	// 인증 (로그인은 토큰 불필요)
	auth := api.Group("/auth")
	auth.POST("/login", limit, h.Auth.Login)
	auth.GET("/me", middleware.JWTAuth(jwtManager), h.Auth.Me)

	authed := api.Group("", middleware.JWTAuth(jwtManager))

	// 기준정보
	authed.GET("/categories", h.Lookup.Categories)
	authed.GET("/companies", h.Lookup.Companies)

	// 임직원 의견
	opinions := authed.Group("/opinions")
	{
		opinions.POST("", limit, h.Opinion.Submit)
		opinions.GET("/mine", h.Opinion.ListMine)
		opinions.GET("/:id", h.Opinion.Get)
	}

	// 관리자
	admin := authed.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/opinions", h.Admin.List)
		admin.GET("/opinions/export", middleware.NoStore(), h.Admin.Export)
		admin.PUT("/opinions/:id/response", h.Admin.Respond)
		admin.GET("/opinions/:id/history", h.Admin.History)
		admin.GET("/stats", h.Admin.Stats)

		admin.GET("/users", h.User.List)
		admin.POST("/users", h.User.Create)
		admin.PUT("/users/:employee_id/role", h.User.UpdateRole)
		admin.PUT("/users/:employee_id/status", h.User.UpdateStatus)
	}
}
