package apihelpers

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

// WriteRoutesToFile dumps the registered routes, used in debug mode to check
// the exposed API surface.
func WriteRoutesToFile(router *gin.Engine, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		slog.Error("Error creating file to save routes", slog.String("error", err.Error()))
		return
	}
	defer file.Close()

	for _, route := range router.Routes() {
		_, err := file.WriteString(fmt.Sprintf("%-6s %s\n", route.Method, route.Path))
		if err != nil {
			slog.Error("Error writing route to file", slog.String("error", err.Error()))
			return
		}
	}
}
