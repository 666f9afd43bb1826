package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/jawat-my/saferoute/constants"
	mcpserver "github.com/jawat-my/saferoute/mcp"
	"github.com/jawat-my/saferoute/utils"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/spf13/cobra"
)

// GenerateHTTPHandlers creates HTTP handlers for all operations and registers them
func GenerateHTTPHandlers(mux *http.ServeMux, svc RelayService) {
	GenerateHTTPHandlersForOperations(mux, svc, GetAllOperations())
}

// GenerateHTTPHandlersForOperations registers handlers for the given subset
// of operations. Serverless deployments use this with an endpoint filter.
func GenerateHTTPHandlersForOperations(mux *http.ServeMux, svc RelayService, ops map[string]*OperationDefinition) {
	// Group operations by path to handle multiple methods on same path
	pathOperations := make(map[string][]*OperationDefinition)

	for _, op := range ops {
		if op.SkipHTTP || op.HTTPPath == "" {
			continue
		}
		pathOperations[op.HTTPPath] = append(pathOperations[op.HTTPPath], op)
	}

	for path, sharing := range pathOperations {
		mux.HandleFunc(path, generateCombinedHTTPHandler(sharing, svc))
	}
}

// generateCombinedHTTPHandler dispatches by method among the operations
// sharing a path. A method nobody claims gets the fixed 405 body, part of
// the relay contract.
func generateCombinedHTTPHandler(ops []*OperationDefinition, svc RelayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var matching *OperationDefinition
		for _, op := range ops {
			if op.HTTPMethod == r.Method {
				matching = op
				break
			}
		}

		if matching == nil {
			writeMethodNotAllowed(w, r)
			return
		}

		if matching.HTTPHandler != nil {
			matching.HTTPHandler(w, r, svc)
			return
		}

		args, err := parseHTTPArgs(r, matching)
		if err != nil {
			writeResponse(w, r, httpResponse{StatusCode: http.StatusBadRequest, Error: constants.ResponseInvalidRequestBody})
			return
		}

		result, err := matching.Handler(r.Context(), svc, args)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeResponse(w, r, httpResponse{StatusCode: http.StatusOK, Data: result})
	}
}

// parseHTTPArgs parses an HTTP request into the operation's argument type.
func parseHTTPArgs(r *http.Request, op *OperationDefinition) (any, error) {
	args := reflect.New(op.ArgsType).Interface()

	switch op.HTTPMethod {
	case http.MethodGet:
		return parseGetArgs(r, args)
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return parsePostArgs(r, args)
	default:
		return args, nil
	}
}

// parseGetArgs fills argument fields from query parameters, matched by
// json tag.
func parseGetArgs(r *http.Request, args any) (any, error) {
	v := reflect.ValueOf(args).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		name := jsonFieldName(t.Field(i))
		if name == "" {
			continue
		}
		if value := r.URL.Query().Get(name); value != "" {
			if err := setFieldValue(field, value); err != nil {
				return nil, err
			}
		}
	}

	return args, nil
}

// parsePostArgs decodes a JSON body into the argument struct. An empty
// body leaves the zero value.
func parsePostArgs(r *http.Request, args any) (any, error) {
	if r.Body == nil {
		return args, nil
	}
	if err := json.NewDecoder(r.Body).Decode(args); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return args, nil
}

// jsonFieldName strips tag options like omitempty.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}

// setFieldValue sets a reflect.Value from a query-parameter string.
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// GenerateMCPTools creates MCP tool registrations for all operations
func GenerateMCPTools(svc RelayService) []mcpserver.ToolRegistration {
	var tools []mcpserver.ToolRegistration

	for _, op := range GetAllOperations() {
		if op.SkipMCP {
			continue
		}
		tools = append(tools, mcpserver.ToolRegistration{
			Name:        op.MCPName,
			Description: op.Description,
			Handler:     generateMCPHandler(op, svc),
		})
	}

	return tools
}

// generateMCPHandler creates an MCP handler for the given operation
func generateMCPHandler(op *OperationDefinition, svc RelayService) any {
	if op.MCPHandler != nil {
		return op.MCPHandler
	}

	return func(ctx context.Context, args any) (*mcp.ToolResponse, error) {
		convertedArgs, err := convertMCPArgs(args, op.ArgsType)
		if err != nil {
			return nil, err
		}

		result, err := op.Handler(ctx, svc, convertedArgs)
		if err != nil {
			return nil, err
		}

		return convertToMCPResponse(result)
	}
}

// convertMCPArgs converts loosely typed MCP arguments to the operation's
// argument type via a JSON round trip.
func convertMCPArgs(args any, targetType reflect.Type) (any, error) {
	if reflect.TypeOf(args) == reflect.PointerTo(targetType) {
		return args, nil
	}

	target := reflect.New(targetType).Interface()

	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}

	return target, nil
}

// convertToMCPResponse converts operation result to MCP response
func convertToMCPResponse(result any) (*mcp.ToolResponse, error) {
	if result == nil {
		return mcp.NewToolResponse(mcp.NewTextContent("success")), nil
	}

	if str, ok := result.(string); ok {
		return mcp.NewToolResponse(mcp.NewTextContent(str)), nil
	}

	data, err := json.MarshalIndent(result, "", constants.JSONIndent)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResponse(mcp.NewTextContent(string(data))), nil
}

// GenerateCLICommands creates CLI commands for all operations
func GenerateCLICommands(svc RelayService) []*cobra.Command {
	var commands []*cobra.Command

	for _, op := range GetAllOperations() {
		if op.SkipCLI {
			continue
		}
		commands = append(commands, generateCLICommand(op, svc))
	}

	return commands
}

// generateCLICommand creates a CLI command for the given operation
func generateCLICommand(op *OperationDefinition, svc RelayService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   op.CLIUse,
		Short: op.CLIShort,
		Long:  op.Description,
	}

	addCLIFlags(cmd, op.ArgsType)

	if op.CLIHandler != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return op.CLIHandler(cmd, args, svc)
		}
	} else {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			opArgs, err := parseCLIArgs(cmd, args, op.ArgsType)
			if err != nil {
				return err
			}
			result, err := op.Handler(cmd.Context(), svc, opArgs)
			if err != nil {
				return err
			}
			return outputCLIResult(result)
		}
	}

	return cmd
}

// addCLIFlags adds flags to a CLI command based on the args type
func addCLIFlags(cmd *cobra.Command, argsType reflect.Type) {
	if argsType == reflect.TypeOf(EmptyArgs{}) {
		return
	}

	for i := 0; i < argsType.NumField(); i++ {
		field := argsType.Field(i)
		flagTag := field.Tag.Get("flag")
		descTag := field.Tag.Get("description")

		if flagTag == "" || flagTag == "-" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			cmd.Flags().String(flagTag, "", descTag)
		case reflect.Bool:
			cmd.Flags().Bool(flagTag, false, descTag)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			cmd.Flags().Int(flagTag, 0, descTag)
		case reflect.Map:
			cmd.Flags().String(flagTag, "", descTag+" (JSON)")
		}
	}
}

// parseCLIArgs parses positional arguments and flags into the operation's
// argument type. The first positional argument fills the first string
// field, matching the registered usage patterns.
func parseCLIArgs(cmd *cobra.Command, args []string, argsType reflect.Type) (any, error) {
	target := reflect.New(argsType).Interface()
	targetVal := reflect.ValueOf(target).Elem()
	targetType := targetVal.Type()

	if len(args) > 0 && targetType.NumField() > 0 {
		firstField := targetVal.Field(0)
		if firstField.CanSet() && firstField.Kind() == reflect.String {
			firstField.SetString(args[0])
		}
	}

	for i := 0; i < targetType.NumField(); i++ {
		field := targetVal.Field(i)
		fieldType := targetType.Field(i)

		if !field.CanSet() {
			continue
		}

		flagTag := fieldType.Tag.Get("flag")
		if flagTag == "" || flagTag == "-" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			value, err := cmd.Flags().GetString(flagTag)
			if err != nil {
				return nil, utils.Errorf("failed to get string flag %s: %v", flagTag, err)
			}
			if value != "" {
				field.SetString(value)
			}
		case reflect.Bool:
			value, err := cmd.Flags().GetBool(flagTag)
			if err != nil {
				return nil, utils.Errorf("failed to get bool flag %s: %v", flagTag, err)
			}
			field.SetBool(value)
		case reflect.Int, reflect.Int64:
			value, err := cmd.Flags().GetInt(flagTag)
			if err != nil {
				return nil, utils.Errorf("failed to get int flag %s: %v", flagTag, err)
			}
			if value != 0 {
				field.SetInt(int64(value))
			}
		case reflect.Map:
			value, err := cmd.Flags().GetString(flagTag)
			if err != nil {
				return nil, utils.Errorf("failed to get string flag %s: %v", flagTag, err)
			}
			if value != "" {
				m := reflect.New(field.Type())
				if err := json.Unmarshal([]byte(value), m.Interface()); err != nil {
					return nil, utils.Errorf("failed to parse JSON for flag %s: %v", flagTag, err)
				}
				field.Set(m.Elem())
			}
		}
	}

	return target, nil
}

// outputCLIResult prints an operation result for terminal consumption.
func outputCLIResult(result any) error {
	if result == nil {
		utils.Info("Success")
		return nil
	}

	if str, ok := result.(string); ok {
		utils.User("%s", str)
		return nil
	}

	data, err := json.MarshalIndent(result, "", constants.JSONIndent)
	if err != nil {
		return err
	}

	utils.User("%s", string(data))
	return nil
}
