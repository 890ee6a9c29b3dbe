package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/internal/util"
	"github.com/hupe1980/agentgate/logging"
	"github.com/hupe1980/agentgate/registry"
	"github.com/hupe1980/agentgate/tool"
)

// PasswordName is the model name the password game agent is served under.
const PasswordName = "password"

// titlePrefix marks quick summary (title) requests from some clients
// (like Open WebUI). Those are answered without tools to avoid overhead.
const titlePrefix = "### Task:"

var punctuation = regexp.MustCompile(`[^\w\s]`)

func removePunctuation(text string) string {
	return punctuation.ReplaceAllString(text, "")
}

// getSecretParams documents the get_secret tool arguments; its schema is
// derived by reflection.
type getSecretParams struct {
	Password string `json:"password" description:"The password to unlock the secret word"`
}

// getSecret implements the get_secret tool of the password game: the agent
// does not know the secret word but can retrieve it by relaying the password
// from the user.
func getSecret(_ context.Context, args map[string]any) (any, error) {
	password, _ := args["password"].(string)
	if removePunctuation(password) == "bapple" {
		return "The secret word is 'stawberry'", nil
	}
	return nil, fmt.Errorf("incorrect password")
}

// newGetSecretTool builds the get_secret function tool.
func newGetSecretTool() tool.Tool {
	return tool.NewFunctionTool(
		"get_secret",
		"If the password is correct, provide the secret word.",
		util.StructSchema(getSecretParams{}),
		getSecret,
	)
}

// Password returns a plugin registering a demo agent that plays a simple
// guessing game through the get_secret tool. Title requests bypass the tool.
func Password(models ModelProvider, logger logging.Logger) registry.Plugin {
	return func(r *registry.Registry) error {
		if models == nil {
			return fmt.Errorf("%s: model provider is required", PasswordName)
		}
		if logger == nil {
			logger = logging.NoOpLogger{}
		}

		r.Register(PasswordName, func(userMessage string, history *core.ConversationContext) (core.Agent, error) {
			if strings.HasPrefix(userMessage, titlePrefix) {
				return NewLLMAgent(PasswordName, models(), history, func(o *LLMAgentOptions) {
					o.Logger = logger
				}), nil
			}

			return NewLLMAgent(PasswordName, models(), history, func(o *LLMAgentOptions) {
				o.Tools = []tool.Tool{newGetSecretTool()}
				o.Logger = logger
			}), nil
		})
		return nil
	}
}
