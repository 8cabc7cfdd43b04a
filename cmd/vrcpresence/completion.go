package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/pkg/presence/event"
)

var completionCmd = &cobra.Command{
	Use:   "completion <bash|zsh|fish|powershell>",
	Short: "Generate a shell completion script",
	Long: `Generate a completion script for vrcpresence and print it to stdout.

Load it into the current session:

  bash:        source <(vrcpresence completion bash)
  zsh:         source <(vrcpresence completion zsh)
  fish:        vrcpresence completion fish | source
  powershell:  vrcpresence completion powershell | Out-String | Invoke-Expression

To load completions in every new session, write the script where your
shell picks it up, for example:

  vrcpresence completion bash > /etc/bash_completion.d/vrcpresence
  vrcpresence completion zsh > "${fpath[1]}/_vrcpresence"
  vrcpresence completion fish > ~/.config/fish/completions/vrcpresence.fish`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeEventTypes completes a comma-separated event type flag. Only
// types absent from the value so far and from earlier uses of the flag
// are offered, each carrying the committed part of the value so the
// shell replaces the whole word.
func completeEventTypes(flagName string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		committed := ""
		current := toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			committed = toComplete[:i+1]
			current = toComplete[i+1:]
		}
		current = strings.ToLower(strings.TrimSpace(current))

		used := make(map[string]bool)
		for _, v := range strings.Split(committed, ",") {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				used[v] = true
			}
		}
		if prior, err := cmd.Flags().GetStringSlice(flagName); err == nil {
			for _, v := range prior {
				if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
					used[v] = true
				}
			}
		}

		var candidates []string
		for _, name := range event.TypeNames() {
			if used[name] || !strings.HasPrefix(name, current) {
				continue
			}
			candidates = append(candidates, committed+name)
		}
		return candidates, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}
