package altair

import (
	"context"
	"fmt"
	"strings"

	"github.com/everydev1618/goaltair/tools"
)

// systemPrompt renders an agent's system prompt, appending the team roster
// when the agent may delegate at this depth.
func (c *Crew) systemPrompt(agent *Agent, depth int) string {
	prompt := agent.SystemPrompt()
	if !c.canDelegate(agent, depth) {
		return prompt
	}
	return prompt + teamPrompt(c.teammates(agent))
}

// agentTools builds the tool registry for one agent run. The registry is a
// filtered view of the crew registry, plus the delegate tool when allowed.
func (c *Crew) agentTools(agent *Agent, depth int, usage *Usage) *tools.Tools {
	var reg *tools.Tools
	if c.tools != nil && len(agent.Tools) > 0 {
		reg = c.tools.Filter(agent.Tools...)
	} else {
		reg = tools.NewTools()
	}

	if c.canDelegate(agent, depth) && !reg.Has("delegate") {
		reg.MustRegister("delegate", c.delegateTool(agent, depth, usage))
	}
	return reg
}

func (c *Crew) canDelegate(agent *Agent, depth int) bool {
	return agent.AllowDelegation && depth < DefaultMaxDelegationDepth && len(c.teammates(agent)) > 0
}

// teammates returns every other agent in the crew, in registration order.
func (c *Crew) teammates(agent *Agent) []*Agent {
	mates := make([]*Agent, 0, len(c.agents))
	for _, a := range c.agents {
		if a.Name != agent.Name {
			mates = append(mates, a)
		}
	}
	return mates
}

// teamPrompt renders the delegation section of a system prompt.
func teamPrompt(mates []*Agent) string {
	var b strings.Builder
	b.WriteString("\n\n## Your Team\n\nYou lead a team of agents. Use the `delegate` tool to assign tasks to them and get their responses. Your team members:\n")
	for _, m := range mates {
		if role := strings.TrimSpace(m.Role); role != "" {
			fmt.Fprintf(&b, "- **%s**: %s\n", m.Name, role)
		} else {
			fmt.Fprintf(&b, "- **%s**\n", m.Name)
		}
	}
	b.WriteString("\nDelegate when a teammate's specialty fits the work better than yours, then synthesize their outputs into a final result.")
	return b.String()
}

// delegateTool builds the delegate tool bound to this crew, agent, and run.
func (c *Crew) delegateTool(from *Agent, depth int, usage *Usage) tools.ToolDef {
	mates := c.teammates(from)
	names := make([]string, len(mates))
	for i, m := range mates {
		names[i] = m.Name
	}

	return tools.ToolDef{
		Description: "Delegate a task to another agent on your team and get their response. Use this to assign work to team members.",
		Params: map[string]tools.ParamDef{
			"agent": {
				Type:        "string",
				Description: "Name of the team member agent to delegate to",
				Required:    true,
				Enum:        names,
			},
			"message": {
				Type:        "string",
				Description: "The task or question to send to the agent",
				Required:    true,
			},
		},
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			name, _ := params["agent"].(string)
			message, _ := params["message"].(string)
			if name == "" || message == "" {
				return "", fmt.Errorf("both agent and message are required")
			}
			if name == from.Name {
				return "", fmt.Errorf("cannot delegate to yourself")
			}

			target, ok := c.byName[name]
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrAgentNotFound, name)
			}

			c.logger.Info("delegating",
				"crew", c.name,
				"from", from.Name,
				"to", target.Name,
				"depth", depth+1,
			)
			return c.runAgent(ctx, target, message, depth+1, usage)
		},
	}
}
