package handlers

import (
	"net/http"

	"cms/auth"
	"cms/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserLoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func UserLogin(c *gin.Context) {
	postReq := UserLoginRequest{}
	err := c.ShouldBindWith(&postReq, binding.Form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, success := models.UserLogin(postReq.Email, postReq.Password)
	if !success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	session := auth.LoadSession(c)
	session.LoginUser(user.ID)
	c.JSON(http.StatusOK, gin.H{"error": "", "name": user.Name, "role": user.Role.Name})
}

func UserGetStatus(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, gin.H{"error": "", "name": user.Name, "role": user.Role.Name})
}

func UserLogout(c *gin.Context, user *models.User) {
	auth.LoadSession(c).LogoutUser()
	c.JSON(http.StatusOK, OKResponse)
}
