// Command murmur runs the Murmur API server and its maintenance commands.
package main

import (
	"os"

	"murmur/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title Murmur API
// @version 1.0
// @description Social API with users, posts, likes, comments, follows and image uploads

// @contact.name API Support
// @contact.email support@murmur.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
