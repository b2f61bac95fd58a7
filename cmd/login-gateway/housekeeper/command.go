package housekeeper

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/login-gateway/internal/business"
	"github.com/openkcm/login-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"housekeeper",
		"Login Gateway Housekeeping job",
		"Login Gateway Housekeeping job removes expired sessions from stores without native expiry",
		buildInfo,
		cmdutils.RunAsService,
		business.HousekeeperMain,
	)
}
