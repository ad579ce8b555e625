package config

// Default returns the built-in configuration: a gateway crew for general
// conversation plus web search, time and calendar specialist crews. The bot
// runs with it when no crew file is given.
//
// Unambiguous requests route straight to a specialist crew via the keyword
// classifier. Everything else lands on the gateway crew, which carries the
// specialist agents as teammates so the gateway agent can delegate to them.
func Default() *Config {
	gateway := AgentConfig{
		Name: "gateway",
		Role: "Telegram Gateway",
		Goal: "Understand incoming Telegram messages and respond helpfully while keeping the conversation coherent",
		Backstory: "You are the communication hub for a Telegram assistant. " +
			"You interpret user messages, maintain conversation context, and format " +
			"clear, friendly replies suited to a chat interface.",
		AllowDelegation: true,
	}
	websearch := AgentConfig{
		Name: "websearch",
		Role: "Web Research Specialist",
		Goal: "Find accurate, up-to-date information on the web and synthesize it into clear answers",
		Backstory: "You are an expert web researcher. You craft effective search " +
			"queries, evaluate sources, and distill findings into factual, " +
			"well-sourced summaries.",
		Tools: []string{"web_search"},
	}
	timeAgent := AgentConfig{
		Name: "time",
		Role: "Time and Date Agent",
		Goal: "Deliver precise temporal information based on real-time calculations",
		Backstory: "I am a specialized agent focused on temporal data. I calculate " +
			"current dates, times, moon phases, and other time-related information " +
			"with precision.",
		Tools: []string{"current_time", "moon_phase", "sunrise_sunset"},
	}
	calendar := AgentConfig{
		Name: "calendar",
		Role: "Calendar Assistant",
		Goal: "Help users stay organized by providing accurate information about their schedule",
		Backstory: "You are an AI assistant specialized in retrieving and understanding " +
			"calendar data. You have read-only access to the user's calendar and can " +
			"provide information about upcoming events, schedule conflicts, and availability.",
		Tools: []string{"upcoming_events", "check_availability", "find_events"},
	}

	cfg := &Config{
		Name:     "altair",
		Provider: "anthropic",
		Crews: map[string]*CrewConfig{
			"gateway": {
				Agents: []AgentConfig{gateway, websearch, timeAgent, calendar},
				Tasks: []TaskConfig{{
					Name: "handle_telegram_message",
					Description: "Handle an incoming Telegram message and produce a helpful reply.\n" +
						"Conversation history:\n{history}\n\nUser message: {message}",
					ExpectedOutput: "A helpful, conversational response formatted for Telegram",
					Agent:          "gateway",
				}},
			},
			"websearch": {
				Agents: []AgentConfig{websearch},
				Tasks: []TaskConfig{{
					Name: "perform_search",
					Description: "Research the user query using web search and synthesize the findings.\n" +
						"User query: {message}",
					ExpectedOutput: "A factual, well-sourced answer based on current information from the web",
					Agent:          "websearch",
				}},
			},
			"time": {
				Agents: []AgentConfig{timeAgent},
				Tasks: []TaskConfig{{
					Name: "process_time_query",
					Description: "Process a time-related query and generate accurate temporal information\n" +
						"Today's date: {date}\nUser query: {message}",
					ExpectedOutput: "A clear, accurate response with the requested time-related information",
					Agent:          "time",
				}},
			},
			"calendar": {
				Agents: []AgentConfig{calendar},
				Tasks: []TaskConfig{{
					Name: "process_calendar_query",
					Description: "Process a calendar-related query and provide accurate information\n" +
						"Today's date: {date}\nUser query: {message}",
					ExpectedOutput: "A clear, accurate response about the user's calendar or schedule",
					Agent:          "calendar",
				}},
			},
		},
		Routing: RoutingConfig{
			Classifier: "keyword",
			Gateway:    "gateway",
			Specialists: map[string]string{
				"search":   "websearch",
				"time":     "time",
				"calendar": "calendar",
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}
