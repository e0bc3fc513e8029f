// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for CopyKit.

Install instructions:
  Bash:       copykit completion bash > /etc/bash_completion.d/copykit
              echo 'source <(copykit completion bash)' >> ~/.bashrc
  Zsh:        copykit completion zsh > ~/.zsh/completions/_copykit
  Fish:       copykit completion fish > ~/.config/fish/completions/copykit.fish
  PowerShell: copykit completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				fmt.Fprintln(os.Stdout, "# CopyKit bash completion")
				fmt.Fprintln(os.Stdout, "# Install: copykit completion bash > /etc/bash_completion.d/copykit")
				fmt.Fprintln(os.Stdout, "# Or:      echo 'source <(copykit completion bash)' >> ~/.bashrc")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				fmt.Fprintln(os.Stdout, "# CopyKit zsh completion")
				fmt.Fprintln(os.Stdout, "# Install: copykit completion zsh > ~/.zsh/completions/_copykit")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				fmt.Fprintln(os.Stdout, "# CopyKit fish completion")
				fmt.Fprintln(os.Stdout, "# Install: copykit completion fish > ~/.config/fish/completions/copykit.fish")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				fmt.Fprintln(os.Stdout, "# CopyKit PowerShell completion")
				fmt.Fprintln(os.Stdout, "# Install: copykit completion powershell >> $PROFILE")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
