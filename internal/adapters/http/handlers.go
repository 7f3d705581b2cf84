package http

import (
	"net/http"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type StatusResponse struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

func statusHandler(hub *app.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		users := hub.Registry.Usernames()
		c.JSON(http.StatusOK, StatusResponse{Count: len(users), Users: users})
	}
}

// handleHealth also counts visits in the cookie session so a client can
// tell the store round-trips.
func handleHealth(c *gin.Context) {
	sess := sessions.Default(c)
	visits, _ := sess.Get("visits").(int)
	visits++
	sess.Set("visits", visits)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "visits": visits})
}
