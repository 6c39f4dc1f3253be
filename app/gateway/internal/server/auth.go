package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/golang-jwt/jwt/v5"
)

// 四类用户角色
var roles = map[string]bool{
	"overcomer": true,
	"helper":    true,
	"volunteer": true,
	"charity":   true,
}

var errMissingToken = errors.New("missing bearer token")

// Auth 校验 HS256 签名的 bearer token，role 必须是已知角色
func Auth(key string) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			if tr, ok := transport.FromServerContext(ctx); ok {
				if _, err := parseRole(key, tr.RequestHeader().Get("Authorization")); err != nil {
					return nil, kerrors.Unauthorized("UNAUTHORIZED", err.Error())
				}
			}
			return handler(ctx, req)
		}
	}
}

func parseRole(key, header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return []byte(key), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	role, _ := claims["role"].(string)
	if !roles[role] {
		return "", fmt.Errorf("unknown role %q", role)
	}
	return role, nil
}
