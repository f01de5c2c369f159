package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"animate-prompt/api/internal/prompt"
)

var instructionCmd = &cobra.Command{
	Use:   "instruction",
	Short: "Print the instruction sent to the model",
	Long: `Print the full instruction for the chosen detail level and styles without
calling a model.

Examples:
  animate-cli instruction --detail 5 --anime
  animate-cli instruction --natural --green-screen`,
	Args: cobra.NoArgs,
	RunE: runInstruction,
}

func init() {
	rootCmd.AddCommand(instructionCmd)
	addPromptFlags(instructionCmd)
}

func runInstruction(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.Instruction(prompt.DetailLevel(detailLevel), styleFromFlags()))
	return err
}
