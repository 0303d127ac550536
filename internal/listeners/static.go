package listeners

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// StartStaticFileServer sirve el build del dashboard web (gráficos de lux
// en vivo) desde un directorio estático, con fallback SPA a index.html
func StartStaticFileServer(addr string, distPath string) error {
	if _, err := os.Stat(distPath); os.IsNotExist(err) {
		log.Printf("⚠️  Directorio del dashboard no encontrado: %s", distPath)
		log.Println("   El servidor del dashboard no se iniciará")
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		fullPath := filepath.Join(distPath, path)

		// Si es un directorio, buscar index.html
		if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
			indexPath := filepath.Join(fullPath, "index.html")
			if _, err := os.Stat(indexPath); err == nil {
				c.File(indexPath)
				return
			}
		}

		// Si el archivo existe, servirlo
		if _, err := os.Stat(fullPath); err == nil {
			c.File(fullPath)
			return
		}

		// SPA fallback
		indexPath := filepath.Join(distPath, "index.html")
		if _, err := os.Stat(indexPath); err == nil {
			c.File(indexPath)
			return
		}

		c.Status(404)
	})

	log.Printf("✅ Dashboard listo en http://%s (archivos: %s)", addr, distPath)

	return router.Run(addr)
}
