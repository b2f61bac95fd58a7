package migrate

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/login-gateway/internal/business"
	"github.com/openkcm/login-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Login Gateway migrations",
		"Login Gateway migrations create the session table used by the postgres session backend",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
