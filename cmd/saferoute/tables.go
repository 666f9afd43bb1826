package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/constants"
)

// newTablesCmd creates the 'tables' subcommand group for gen-table
// management. These relays have no generated CLI commands because their
// map-shaped arguments need real flag handling.
func newTablesCmd(svc api.RelayService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdTables,
		Short: constants.DescTables,
	}
	cmd.AddCommand(
		newTablesCreateCmd(svc),
		newTablesAddCmd(svc),
		newTablesListCmd(svc),
	)
	return cmd
}

// newTablesCreateCmd relays an action-table creation to JamAI.
func newTablesCreateCmd(svc api.RelayService) *cobra.Command {
	var input, output map[string]string
	cmd := &cobra.Command{
		Use:   "create <table>",
		Short: "Create a gen table with the given columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := svc.CreateTable(cmd.Context(), args[0], input, output)
			if err != nil {
				return err
			}
			return outputRawResult(raw)
		},
	}
	cmd.Flags().StringToStringVar(&input, "input", nil, "input columns as name=dtype, e.g. user_input=str")
	cmd.Flags().StringToStringVar(&output, "output", nil, "LLM output columns as name=dtype, e.g. route_analysis=str")
	return cmd
}

// newTablesAddCmd relays one row insert into the routing table.
func newTablesAddCmd(svc api.RelayService) *cobra.Command {
	var rowPath, rowJSON string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add one row to the emergency routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := loadRow(rowPath, rowJSON)
			if err != nil {
				return err
			}
			raw, err := svc.CreateRow(cmd.Context(), row)
			if err != nil {
				return err
			}
			return outputRawResult(raw)
		},
	}
	cmd.Flags().StringVar(&rowPath, "row", "", "Path to row JSON file")
	cmd.Flags().StringVar(&rowJSON, "row-json", "", "Row as inline JSON string")
	return cmd
}

// newTablesListCmd relays a row listing. Unset flags fall back to the fixed
// default query.
func newTablesListCmd(svc api.RelayService) *cobra.Command {
	var tableID, orderBy, order string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rows from a gen table, newest first by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := url.Values{}
			if tableID != "" {
				overrides.Set("table_id", tableID)
			}
			if limit > 0 {
				overrides.Set("limit", strconv.Itoa(limit))
			}
			if orderBy != "" {
				overrides.Set("order_by", orderBy)
			}
			if order != "" {
				overrides.Set("order", order)
			}
			raw, err := svc.ListRows(cmd.Context(), overrides)
			if err != nil {
				return err
			}
			return outputRawResult(raw)
		},
	}
	cmd.Flags().StringVar(&tableID, "table", "", "table to list from")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "column to order by")
	cmd.Flags().StringVar(&order, "order", "", "sort direction, asc or desc")
	return cmd
}
