package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Radar  *Radar  `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Data 历史记录所在的数据库，Source 为空时不提供历史查询
type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

type Radar struct {
	Llm         *LLM         `json:"llm"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Db          *DB          `json:"db"`
	Ticker      *Ticker      `json:"ticker"`
	Analysis    *Analysis    `json:"analysis"`
	News        *News        `json:"news"`
}

type LLM struct {
	Provider string `json:"provider"`
	BaseUrl  string `json:"base_url"`
	ApiKey   string `json:"api_key"`
	Model    string `json:"model"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps        int32 `json:"qps"`
	Rpm        int32 `json:"rpm"`
	MaxRetries int32 `json:"max_retries"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Ticker struct {
	Phases          []string `json:"phases"`
	Tips            []string `json:"tips"`
	PhaseIntervalMs int32    `json:"phase_interval_ms"`
	TipIntervalMs   int32    `json:"tip_interval_ms"`
}

type Analysis struct {
	DetailCards int32 `json:"detail_cards"`
}

type News struct {
	Provider       string   `json:"provider"`
	MaxHeadlines   int32    `json:"max_headlines"`
	LookbackDays   int32    `json:"lookback_days"`
	FetchArticles  bool     `json:"fetch_articles"`
	ArticleTimeout int32    `json:"article_timeout"`
	Tavily         *Tavily  `json:"tavily"`
	Searxng        *Searxng `json:"searxng"`
	Rss            *Rss     `json:"rss"`
}

type Tavily struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
}

type Searxng struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Rss struct {
	Feeds []string `json:"feeds"`
}
