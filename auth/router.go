package auth

import (
	"net/http"

	"cms/models"
	"cms/rbac"

	"github.com/gin-gonic/gin"
)

// User is authenticated and holds the required permissions
type HandlerFunc func(c *gin.Context, user *models.User)

// Router wraps gin routes with session loading and an rbac check.
// Every mutating route names the permission it needs; the engine decides.
type Router struct {
	Base   *gin.Engine
	Engine *rbac.Engine
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc, required []string) {
	session := LoadSession(c)
	user := session.User()
	if user.ID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		return
	}
	role, err := cr.Engine.ResolveRole(c.Request.Context(), user.RoleID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		return
	}
	for _, permission := range required {
		granted, err := cr.Engine.Authorize(c.Request.Context(), role, permission)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization unavailable"})
			return
		}
		if !granted {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
	}
	handler(c, &user)
}

func (cr *Router) POST(path string, handler HandlerFunc, required ...string) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc, required ...string) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) PUT(path string, handler HandlerFunc, required ...string) {
	cr.Base.PUT(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}
