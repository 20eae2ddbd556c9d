package public

import (
	"github.com/gin-gonic/gin"

	handlershared "github.com/mallfront/internal/http/handlers/shared"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithData(c *gin.Context, code int, key string, data interface{}, err error) {
	handlershared.RespondErrorWithData(c, code, key, data, err)
}
