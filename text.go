package main

var (
	rootLong = `Serves a personal portfolio website: profile, experience, skills,
projects and a contact form, plus a small interactive console that
visitors can open from any page.

Running without a subcommand is the same as "portfolio serve".`

	serveLong = `Starts the HTTP server. Settings come from portfolio.toml, a .env file
and PORTFOLIO_* environment variables; PORT, SMTP_*, TO_EMAIL and
ADMIN_* are read as well.`

	consoleLong = `Opens the same console the website offers, in this terminal.
Enter runs a command, Up and Down walk history, Tab completes command
names, Ctrl+T switches between light and dark, Esc or Ctrl+C closes it.`

	adminLong = `Works directly against the site's database. Visitor addresses are
only ever stored as salted hashes; use "forget" with the hash shown on
the admin dashboard to erase one visitor's records.`
)
