package apiserver

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/login-gateway/internal/business"
	"github.com/openkcm/login-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"api-server",
		"Login Gateway API server",
		"Login Gateway API server serves the frontend, the login callback and, in development, forwards backend traffic",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
