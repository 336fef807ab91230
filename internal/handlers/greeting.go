package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Hi handles GET /hi.
func Hi(c *gin.Context) {
	c.String(http.StatusOK, "Hello world!")
}

// Hello handles GET /hello/:name and greets the name from the path.
func Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello %s!", c.Param("name"))
}
