package main

import (
	"github.com/spf13/cobra"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/core"
	"github.com/jawat-my/saferoute/utils"
)

// newSOPCmd creates the 'sop' subcommand group for the flood SOP summary.
func newSOPCmd(deps *core.Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdSOP,
		Short: "Manage the flood SOP knowledge",
	}
	cmd.AddCommand(
		newSOPUploadCmd(deps),
		newSOPShowCmd(),
	)
	return cmd
}

func newSOPUploadCmd(deps *core.Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: constants.DescSOPUpload,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := core.UploadSOP(cmd.Context(), deps); err != nil {
				return err
			}
			utils.User("SOP summary uploaded to %s", constants.TableEmergencyRouting)
			return nil
		},
	}
}

func newSOPShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the SOP summary sent upstream",
		Run: func(cmd *cobra.Command, args []string) {
			utils.User("%s", constants.SOPKnowledge)
		},
	}
}

// newPPSCmd creates the 'pps' subcommand group for the shelter knowledge
// table.
func newPPSCmd(deps *core.Dependencies, svc api.RelayService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdPPS,
		Short: "Manage the PPS shelter knowledge",
	}
	cmd.AddCommand(
		newPPSUploadCmd(deps, svc),
		newPPSShowCmd(),
	)
	return cmd
}

func newPPSUploadCmd(deps *core.Dependencies, svc api.RelayService) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: constants.DescPPSUpload,
		RunE: func(cmd *cobra.Command, args []string) error {
			shelters, err := svc.ListShelters(cmd.Context(), "")
			if err != nil {
				return err
			}
			if err := core.UploadPPSKnowledge(cmd.Context(), deps, shelters); err != nil {
				return err
			}
			utils.User("Uploaded %d PPS rows to %s", len(shelters), constants.TablePPSKnowledge)
			return nil
		},
	}
}

func newPPSShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the PPS context sent upstream",
		Run: func(cmd *cobra.Command, args []string) {
			utils.User("%s", constants.PPSKnowledgeText)
		},
	}
}
