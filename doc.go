// Package altair provides role-based AI agent crews with tool use and
// delegation, built for chat gateways.
//
// Altair is a Go library for running teams of LLM agents. It provides:
//
//   - Agent definitions with roles, goals, and backstories
//   - Crews that run tasks in order, passing outputs forward
//   - Tool registration with JSON Schema generation
//   - Delegation between teammates
//   - Retry with exponential backoff for transient LLM failures
//   - Intent-based routing between specialist crews
//
// # Quick Start
//
// Create a crew and run it:
//
//	// Create an LLM backend
//	backend, err := llm.New("anthropic", llm.WithAPIKey(key))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Define an agent and a task
//	agent := &altair.Agent{
//	    Name:      "assistant",
//	    Role:      "Helpful Assistant",
//	    Goal:      "Answer questions clearly and concisely",
//	    Backstory: "You are a friendly assistant with broad knowledge.",
//	}
//	task := &altair.Task{
//	    Name:        "respond",
//	    Description: "Answer the user's message: {message}",
//	    Agent:       "assistant",
//	}
//
//	// Build and run the crew
//	crew := altair.NewCrew("chat",
//	    altair.WithAgents(agent),
//	    altair.WithTasks(task),
//	    altair.WithLLM(backend),
//	)
//	result, err := crew.Kickoff(ctx, map[string]string{"message": "Hello!"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Raw)
//
// # Tools
//
// Agents call tools by name from a shared registry:
//
//	reg := tools.NewTools()
//	tools.RegisterClockTools(reg)
//	crew := altair.NewCrew("chat",
//	    altair.WithAgents(&altair.Agent{
//	        Name:  "assistant",
//	        Role:  "Assistant",
//	        Tools: []string{"current_time"},
//	    }),
//	    altair.WithTasks(task),
//	    altair.WithLLM(backend),
//	    altair.WithTools(reg),
//	)
//
// # Routing
//
// An Orchestrator classifies each message and hands it to the gateway crew
// or a specialist:
//
//	orch := altair.NewOrchestrator(gatewayCrew,
//	    altair.WithClassifier(altair.NewKeywordClassifier()),
//	    altair.WithSpecialist(altair.IntentSearch, searchCrew),
//	)
//	reply, err := orch.Respond(ctx, "what's in the news today?", history)
package altair
