//go:build !swagger

package api

import "github.com/gin-gonic/gin"

// registerSwaggerRoutes is a no-op in builds without the swagger tag.
func registerSwaggerRoutes(engine *gin.Engine) {}
