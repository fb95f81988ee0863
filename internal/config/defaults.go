package config

import "time"

// Default returns the built-in configuration: the feeds, countries and
// keyword lists the monitor shipped with.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetch: FetchConfig{
			MaxAttempts: 3,
			RetryDelay:  5 * time.Second,
			Timeout:     30 * time.Second,
			Concurrency: 1,
			UserAgent:   "TenderMonitor/1.0",
		},
		Classifier: ClassifierConfig{
			Policy:        "all",
			Countries:     defaultCountries(),
			Anchors:       []string{"data center", "data centre", "datacenter"},
			Tender:        defaultTenderKeywords(),
			Service:       defaultServiceKeywords(),
			Organizations: defaultOrganizations(),
		},
		Limits: LimitsConfig{TitleLength: 60, SummaryLength: 200},
		Storage: StorageConfig{
			RecordsPath: "data_center_monitoring.csv",
			SeenPath:    "seen_links.json",
			LockFile:    "tendermonitor.lock",
		},
		Report: ReportConfig{Enabled: true, OutputDir: "."},
		Notifications: NotificationConfig{
			Subject: defaultSubject,
			Email: EmailConfig{
				Host:    "smtp.gmail.com",
				Port:    587,
				TLS:     "starttls",
				Timeout: 30 * time.Second,
			},
			Webhook: WebhookConfig{MaxContentLength: 2000, Timeout: 10 * time.Second},
			Telegram: TelegramConfig{
				Endpoint: "https://api.telegram.org",
			},
		},
		Sources: defaultSources(),
	}
}

func defaultCountries() []CountryConfig {
	return []CountryConfig{
		{Name: "Poland", Keywords: []string{"poland", "warsaw", "wroclaw", "krakow", "poznan", "gdansk", "lodz", "katowice"}},
		{Name: "Germany", Keywords: []string{"germany", "frankfurt", "berlin", "munich", "hamburg"}},
		{Name: "Ireland", Keywords: []string{"ireland", "dublin", "wicklow"}},
		{Name: "Sweden", Keywords: []string{"sweden", "stockholm"}},
		{Name: "Norway", Keywords: []string{"norway", "oslo"}},
		{Name: "Finland", Keywords: []string{"finland", "helsinki"}},
		{Name: "Denmark", Keywords: []string{"denmark", "copenhagen"}},
	}
}

func defaultTenderKeywords() []string {
	return []string{
		"construction", "expansion", "building permit", "tender", "contract", "development",
		"investment", "planning", "project", "site acquisition", "civil works", "procurement",
		"epc", "approved site", "new facility", "rfp", "rfq",
	}
}

func defaultServiceKeywords() []string {
	return []string{
		"mep", "hvac", "cooling", "ventilation", "bms", "heat recovery", "vrf", "rooftop unit",
		"ductwork", "airflow", "fire protection", "commissioning", "fit-out", "structured cabling",
		"electrical installation", "electrical infrastructure", "ups", "genset", "containment",
		"electrical", "mechanical", "power", "technical room", "building envelope", "raised floor",
		"concrete frame", "steel structure", "clean room", "data center", "dc cooling",
		"prefabrication", "prefab", "pipe installation", "pipework", "steel prefabrication",
		"spawanie", "welding", "rury", "pipes", "kanały", "ducts", "izolacja", "insulation",
		"montaż", "installation", "montaz rurociągów", "pipe assembly", "metal fabrication",
		"sheet metal", "pipe supports", "structure supports", "konstrukcje stalowe", "stalowe kanały",
		"wsporniki", "podpory", "technical services", "fabrication", "warsztat", "workshop",
		"engineering support", "on-site installation", "assembly", "prefabrykacja", "trays",
		"drip trays", "drain trays", "ociekowe", "tace ociekowe", "mezzanine", "platform",
		"pomiar", "pomiary", "3d scanning", "inwentaryzacja", "cad", "projektowanie", "3d model",
		"laser scanning", "scan to bim", "3d documentation", "revit", "modelowanie",
	}
}

func defaultOrganizations() []string {
	return []string{
		"vantage", "brookfield", "echelon", "mercury", "winthrop",
		"dornan", "green mountain", "interxion", "ntt", "data4", "equinix", "atman",
	}
}

func defaultSources() []SourceConfig {
	feeds := []struct{ name, url string }{
		{"DCD", "https://www.datacenterdynamics.com/en/rss/"},
		{"Data Economy", "https://data-economy.com/feed/"},
		{"Capacity Media", "https://www.capacitymedia.com/rss/news"},
		{"Construction Index UK", "https://www.theconstructionindex.co.uk/news/rss/news"},
		{"Commercial Property Exec", "https://www.commercialsearch.com/news/feed/"},
		{"PR Newswire Infra", "https://www.prnewswire.com/rss/subject/infrastructure.xml"},
		{"InfraNews", "https://www.inframationnews.com/rss.xml"},
		{"BNP Paribas RE", "https://www.realestate.bnpparibas.com/rss.xml"},
		{"ITwiz", "https://itwiz.pl/feed/"},
		{"Irish Construction News", "https://constructionnews.ie/feed/"},
	}
	out := make([]SourceConfig, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, SourceConfig{Name: f.name, URL: f.url, Scanner: "rss"})
	}
	return out
}
