package routes

import (
	"spacegate/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterSpaceRoutes(r gin.IRouter, sc *controllers.SpaceController) {
	space := r.Group("/space")
	{
		space.GET("", sc.GetSpace)
		space.GET("/disk", sc.GetDisk)
	}
}
