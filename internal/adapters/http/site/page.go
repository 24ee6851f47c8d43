package site

import (
	"strings"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type feature struct {
	tone        model.Tone
	title, desc string
}

type plan struct {
	tone    model.Tone
	name    string
	price   string
	note    string
	bullets []string
	popular bool
}

type faq struct {
	q, a string
}

var steps = []feature{
	{model.ToneCyan, "Server library", "Browse our servers by game, mode and region. Think of it as a catalogue that keeps itself up to date."},
	{model.ToneFuchsia, "Direct VPN connection", "Our VPN app takes you straight into Horus infrastructure: a dedicated route, less exposure and a controlled environment."},
	{model.ToneEmerald, "Play with stability", "Our own servers tuned for gaming: less jitter, better consistency and a competitive experience."},
}

var safeguards = []feature{
	{model.ToneFuchsia, "Real privacy", "Your session travels through a tunnel into Horus infrastructure, so you are less exposed while you play."},
	{model.ToneEmerald, "Anti-cheat installed", "Active defence that keeps matches, servers and communities fair."},
	{model.ToneCyan, "AI watching around the clock", "Anomaly signals and suspicious patterns get a faster response and less abuse."},
	{model.ToneCyan, "HorusPass included", "A free add-on to store passwords with less friction and safer accounts."},
}

var plans = []plan{
	{model.ToneFuchsia, "Starter", "€9", "Play safe and stable.", []string{
		"Access to the server library",
		"Direct VPN into Horus infrastructure",
		"Optimised routes per region",
		"HorusPass included",
		"Standard support",
	}, false},
	{model.ToneCyan, "Pro", "€19", "For ranked, scrims and long sessions.", []string{
		"Everything in Starter",
		"Route and availability priority",
		"Profiles per game and region",
		"HorusPass included",
		"Priority support",
	}, true},
	{model.ToneEmerald, "Squad", "€39", "For teams and groups.", []string{
		"Everything in Pro",
		"Multi-user management",
		"Shared access and favourites",
		"HorusPass included",
		"Advanced support",
	}, false},
}

type fact struct {
	tone model.Tone
	k, v string
}

var privateServer = []fact{
	{model.ToneCyan, "Regions", "EU / NA / SA"},
	{model.ToneFuchsia, "Access", "Direct or through the VPN"},
	{model.ToneEmerald, "Protection", "Anti-cheat and AI"},
	{model.ToneCyan, "Performance", "Tuned for gaming"},
}

var faqs = []faq{
	{"What makes HorusVPN different?", "It is not a generic VPN. It is a subscription to a library of our own gaming servers, reached through a direct VPN into Horus infrastructure with anti-cheat and AI layers on top."},
	{"Does this reduce lag?", "Our own infrastructure and optimised routes aim to minimise jitter and improve consistency. The final result depends on your location and ISP, but the path to Horus is built to be efficient."},
	{"What is HorusPass?", "HorusPass is a free add-on included with your subscription: an app to store passwords and keep your accounts safer without friction."},
	{"Are private servers available too?", "Yes. Tell us the game, the region and how many players you expect and we will prepare a server with the Horus layer."},
}

// Page renders the complete landing page. infos decides which live widgets
// are embedded; the browser mounts each one through the widget API.
func Page(infos []types.WidgetInfo) g.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(g.Text("HorusVPN · Secure gaming network")),
				Link(Rel("stylesheet"), Href("/static/site.css")),
				Script(Src("/static/app.js"), g.Attr("defer")),
			),
			Body(
				Class("page"),
				header(),
				Main(
					hero(),
					howItWorks(),
					security(infos),
					subscription(),
					privateServers(),
					faqSection(),
					cta(),
				),
				footer(),
			),
		),
	)
}

func header() g.Node {
	return Header(Class("topbar"),
		A(Class("brand"), Href("#top"), Span(Class("brand-mark"), g.Text("H")), g.Text("HorusVPN")),
		Nav(
			A(Href("#how"), g.Text("How it works")),
			A(Href("#security"), g.Text("Security")),
			A(Href("#plans"), g.Text("Plans")),
			A(Href("#servers"), g.Text("Private servers")),
			A(Href("#faq"), g.Text("FAQ")),
		),
	)
}

func hero() g.Node {
	return Section(ID("top"), Class("hero"),
		Div(Class("pills"),
			pill(model.ToneCyan, "Own infrastructure"),
			pill(model.ToneFuchsia, "Direct VPN"),
			pill(model.ToneEmerald, "Anti-cheat and AI"),
		),
		H1(g.Text("The gaming ecosystem you enter through a VPN, with armoured security.")),
		P(Class("lead"), g.Text("App → VPN → Horus servers → Game")),
		Div(Class("actions"),
			A(Class("btn btn-primary"), Href("#plans"), g.Text("Subscribe")),
			A(Class("btn btn-ghost"), Href("#plans"), g.Text("See plans")),
		),
		Div(Class("stats"),
			stat(model.ToneCyan, "Own infrastructure", "Optimised routes"),
			stat(model.ToneFuchsia, "Privacy", "Direct VPN, no spying"),
			stat(model.ToneEmerald, "Integrity", "Anti-cheat and AI"),
		),
		P(Class("fineprint"), g.Text("\"Zero lag\" refers to our own optimised infrastructure and dedicated routes; real latency varies with location and provider.")),
	)
}

func howItWorks() g.Node {
	return Section(ID("how"), Class("section"),
		sectionTitle("HOW IT WORKS", "A simple experience: pick, connect and play.",
			"No generic VPN: your connection enters a controlled Horus environment with gaming performance and layers of security."),
		Div(Class("grid grid-3"),
			g.Map(steps, featureCard),
		),
	)
}

func security(infos []types.WidgetInfo) g.Node {
	return Section(ID("security"), Class("section"),
		sectionTitle("SECURITY", "Armoured security: privacy, anti-cheat and AI.",
			"So you play without worrying: less network exposure, more control over the environment and a cleaner community."),
		Div(Class("grid grid-3 widgets"),
			g.Map(infos, widgetSlot),
		),
		Div(Class("badges"),
			Span(Class("badge"), g.Text("No spies on your PC while you play")),
			Span(Class("badge"), g.Text("Controlled Horus infrastructure")),
			Span(Class("badge"), g.Text("AI watch 24/7")),
			Span(Class("badge"), g.Text("HorusPass included")),
		),
		Div(Class("grid grid-2"),
			g.Map(safeguards, featureCard),
		),
	)
}

// widgetSlot is the mount point app.js fills with a live widget.
func widgetSlot(info types.WidgetInfo) g.Node {
	return Div(Class("card widget widget-"+string(info.Kind)),
		Data("kind", string(info.Kind)),
		Data("layout", info.Layout),
		g.If(len(info.Lanes) > 0, Data("lanes", strings.Join(info.Lanes, ","))),
		Div(Class("widget-head"),
			Span(Class("widget-title"), g.Text(widgetTitle(info.Kind))),
			Span(Class("widget-phase"), g.Text("connecting")),
		),
		Div(Class("widget-field"), Role("img"), Aria("label", widgetTitle(info.Kind))),
		P(Class("widget-status"), g.Text(firstLine(info.Script))),
	)
}

func widgetTitle(kind model.Kind) string {
	switch kind {
	case model.KindRadar:
		return "Anti-cheat radar"
	case model.KindHexRadar:
		return "Integrity hex radar"
	case model.KindWaveform:
		return "Signal waveform"
	default:
		return string(kind)
	}
}

func firstLine(script []string) string {
	if len(script) == 0 {
		return ""
	}
	return script[0]
}

func subscription() g.Node {
	return Section(ID("plans"), Class("section"),
		sectionTitle("SUBSCRIPTION", "A monthly subscription to enter the library.",
			"Built for competitive players, squads and creators: quick to use and made for gaming."),
		Div(Class("grid grid-3"),
			g.Map(plans, planCard),
		),
	)
}

func planCard(p plan) g.Node {
	return Div(Class("card plan tone-"+string(p.tone)),
		Div(Class("plan-head"),
			Div(
				Div(Class("plan-name"), g.Text(p.name),
					g.If(p.popular, Span(Class("popular"), g.Text("Most popular"))),
				),
				P(Class("plan-note"), g.Text(p.note)),
			),
			Div(Class("price"),
				Span(Class("price-from"), g.Text("from")),
				Strong(g.Text(p.price)),
				Span(Class("price-per"), g.Text("/ month")),
			),
		),
		Ul(Class("checks"),
			g.Map(p.bullets, func(b string) g.Node { return Li(g.Text(b)) }),
		),
		A(Class("btn btn-primary"), Href("#cta"), g.Textf("Choose %s", p.name)),
	)
}

func privateServers() g.Node {
	return Section(ID("servers"), Class("section"),
		sectionTitle("PRIVATE SERVERS", "Rent private gaming servers with the Horus layer.",
			"Your community, your configuration and your performance, with direct VPN options and anti-cheat protection."),
		Div(Class("grid grid-4"),
			g.Map(privateServer, func(x fact) g.Node { return stat(x.tone, x.k, x.v) }),
		),
		Div(Class("actions"),
			A(Class("btn btn-primary"), Href("#cta"), g.Text("Request a private server")),
		),
	)
}

func faqSection() g.Node {
	return Section(ID("faq"), Class("section"),
		sectionTitle("FAQ", "Frequently asked questions", "Everything you want to know before joining."),
		Div(Class("faq"),
			g.Map(faqs, func(f faq) g.Node {
				return Details(
					Summary(g.Text(f.q)),
					P(g.Text(f.a)),
				)
			}),
		),
	)
}

func cta() g.Node {
	return Section(ID("cta"), Class("section cta"),
		H2(g.Text("Ready to play protected?")),
		P(g.Text("Join the library, connect through the VPN and keep your matches clean.")),
		A(Class("btn btn-primary"), Href("#plans"), g.Text("Get started")),
	)
}

func footer() g.Node {
	return Footer(Class("footer"),
		Span(g.Text("© HorusVPN")),
		Nav(
			A(Href("#how"), g.Text("How it works")),
			A(Href("#security"), g.Text("Security")),
			A(Href("#plans"), g.Text("Plans")),
			A(Href("#faq"), g.Text("FAQ")),
			A(Href("/api-docs"), g.Text("API")),
		),
	)
}

func sectionTitle(kicker, title, subtitle string) g.Node {
	return Div(Class("section-title"),
		Div(Class("kicker"), g.Text(kicker)),
		H2(g.Text(title)),
		P(g.Text(subtitle)),
	)
}

func featureCard(f feature) g.Node {
	return Div(Class("card feature tone-"+string(f.tone)),
		H3(g.Text(f.title)),
		P(g.Text(f.desc)),
	)
}

func pill(t model.Tone, text string) g.Node {
	return Span(Class("pill tone-"+string(t)), Span(Class("dot")), g.Text(text))
}

func stat(t model.Tone, k, v string) g.Node {
	return Div(Class("card stat tone-"+string(t)),
		Div(Class("stat-k"), g.Text(k)),
		Div(Class("stat-v"), g.Text(v)),
	)
}
