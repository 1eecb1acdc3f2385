package console

// Banner seeds every freshly mounted transcript.
var Banner = []string{
	"Welcome to NathanPortfolioOS v1.0.0",
	`Type "help" for available commands`,
}

var whoamiPool = []string{
	"A curious soul exploring a developer's portfolio 🔍",
	"Someone who actually reads portfolio websites - I appreciate you! 🙏",
	"A person of impeccable taste in portfolio terminals ✨",
	"Hopefully my future colleague? 👀",
	"Someone who found the best command in this terminal 🎯",
	"A tech enthusiast with great command-line skills 💻",
}

const whoamiRoot = "Root User (but you're still not getting my password 😎)"

// Default returns the portfolio's command vocabulary.
func Default(opts ...Option) *Registry {
	r := NewRegistry(opts...)

	r.Register(Command{Name: "help", Run: r.help})
	r.Register(Command{Name: "about", Description: "Learn about Nathan", Run: about})
	r.Register(Command{Name: "skills", Description: "View technical skills", Run: skills})
	r.Register(Command{Name: "projects", Description: "List major projects", Run: projects})
	r.Register(Command{Name: "contact", Description: "Get contact info", Run: contact})
	r.Register(Command{Name: "whoami", Description: "Discover your true identity", Run: r.whoami})
	r.Register(Command{Name: "clear", Description: "Clear terminal", Run: clearScreen})
	r.Register(Command{Name: "sudo", Description: "Gain unlimited power", Run: sudo})
	r.Register(Command{Name: "exit", Description: "Close terminal", Run: exit})
	r.Register(Command{Name: "easter", Description: "???", Run: easter})

	return r
}

func (r *Registry) help(Env) []Line {
	out := []Line{Text("Available commands:")}
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Description == "" {
			continue
		}
		out = append(out, Text("• "+name+" - "+cmd.Description))
	}
	return out
}

func about(Env) []Line {
	return append(textLines(
		"Nathan Hunter",
		"Software Engineer & Digital Forensics Enthusiast",
		"Based in Sydney, Australia",
		"Passionate about encryption, optimization, and solving digital mysteries",
	), Linked(Plain("Learn more on the "), Link("Home Page", "/"), Plain(".")))
}

func skills(Env) []Line {
	return append(textLines(
		"Technical Skills:",
		"• Languages: Delphi, Python, C, C++, JavaScript",
		"• Digital Forensics",
		"• Machine Learning",
		"• NLP & Data Analysis",
	), Linked(
		Plain("See my skills applied in "),
		Link("Projects", "/projects"),
		Plain(" and for more detail visit the "),
		Link("Home Page", "/"),
		Plain("."),
	))
}

func projects(Env) []Line {
	return append(textLines(
		"Notable Projects:",
		"• News Search Engine - NLP-based article analysis",
		"• NHText - Predictive text editor in C++",
		"• FileSystem CPP - Custom file system implementation",
	), Linked(Plain("Learn more on the "), Link("Projects Page", "/projects"), Plain(".")))
}

func contact(Env) []Line {
	return []Line{
		Text("Contact Information:"),
		Linked(Plain("• Email: "), Link("n-hunter@hotmail.com", "mailto:n-hunter@hotmail.com")),
		Linked(Plain("• LinkedIn: "), Link("/in/h-nathan", "https://linkedin.com/in/h-nathan")),
		Linked(Plain("• GitHub: "), Link("/nHunter0", "https://github.com/nHunter0")),
	}
}

func (r *Registry) whoami(env Env) []Line {
	if env.Elevated() {
		return textLines(whoamiRoot)
	}
	return textLines(whoamiPool[r.pick(len(whoamiPool))])
}

func clearScreen(env Env) []Line {
	env.ClearTranscript()
	return nil
}

func sudo(env Env) []Line {
	if env.Elevated() {
		return textLines("You already have unlimited power! Try not to break anything 😅")
	}
	env.SetElevated(true)
	return textLines(
		"Successfully gained root access!",
		"With great power comes great responsibility... 🦸‍♂️",
		"(Try other commands now with your new powers!)",
	)
}

func exit(env Env) []Line {
	if env.Elevated() {
		return textLines(`Exit denied: You have too much power to leave! Try "sudo exit" 😉`)
	}
	env.RequestClose()
	return textLines("Goodbye! Thanks for visiting! 👋")
}

func easter(Env) []Line {
	return textLines(
		"🎉 You found the easter egg! 🎉",
		"Here's a quick joke:",
		"Why do programmers prefer dark mode?",
		"Because light attracts bugs! 🪲",
		`Try "sudo" for more fun...`,
	)
}
