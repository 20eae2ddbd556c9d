package public

import (
	"github.com/gin-gonic/gin"

	handlershared "github.com/mallfront/internal/http/handlers/shared"
	"github.com/mallfront/internal/i18n"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

// welcomeText 生成会话欢迎语，有昵称时带称呼
func welcomeText(c *gin.Context) string {
	locale := i18n.ResolveLocale(c)
	if value, ok := c.Get("nickname"); ok {
		if nickname, ok := value.(string); ok && nickname != "" {
			return i18n.Sprintf(locale, "chat.welcome", nickname)
		}
	}
	return i18n.T(locale, "chat.welcome_guest")
}
