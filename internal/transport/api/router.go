package api

import (
	"time"

	"github.com/fsdevblog/groph-referral/internal/domain"
	"github.com/fsdevblog/groph-referral/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup       = "/api/v1/users"
	RegisterRoute    = "/register"
	LoginRoute       = "/login"
	ReferRoute       = "/refer"
	CommissionsRoute = "/commissions"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	UserService       UserServicer
	ReferralService   ReferralServicer
	CommissionService CommissionServicer
	JWTSecretKey      []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	referralsHandler := NewReferralsHandler(args.ReferralService)
	commissionsHandler := NewCommissionsHandler(args.CommissionService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.POST(ReferRoute, referralsHandler.Create)
	api.GET(CommissionsRoute, middlewares.RoleRequired(domain.RoleAdmin), commissionsHandler.Index)
	return r
}
