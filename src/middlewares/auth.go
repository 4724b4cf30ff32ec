package middlewares

import (
	"log"
	"os"
	"strconv"
	"strings"

	"tourbook/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil || uid == 0 {
		log.Printf("error parsing claims subject: %v\n", err)
		ctx.AbortWithStatus(401)
		return
	}
	role := types.Role(claims.Role)
	if role != types.ROLE_TOURIST && role != types.ROLE_GUIDE {
		ctx.AbortWithStatus(401)
		return
	}

	ctx.Set("id", uint(uid))
	ctx.Set("username", claims.Username)
	ctx.Set("role", string(role))
}
