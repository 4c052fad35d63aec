//	@title			Roster API
//	@version		1.0
//	@description	Roster is a user directory CRUD service backed by PostgreSQL

//	@contact.name	Roster Support
//	@contact.url	https://github.com/rosterhq/roster

//	@license.name	MIT
//	@license.url	https://github.com/rosterhq/roster/blob/main/LICENSE

//	@BasePath	/api/v0

//	@tag.name			users
//	@tag.description	User management operations

//	@tag.name			Operations
//	@tag.description	Operational endpoints for monitoring and health

package main

import (
	"os"

	"github.com/rosterhq/roster/cli"
	_ "github.com/rosterhq/roster/engine/user/router" // Import for swagger docs
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		// Exit with error code 1 if command execution fails
		os.Exit(1)
	}
}
