package app

// Translator resolves a message key to a localized string.
type Translator func(key string) string

type Language string

const (
	LangJapanese Language = "ja"
	LangEnglish  Language = "en"
)

// ParseLanguage normalizes a configured language tag, defaulting to English.
func ParseLanguage(raw string) Language {
	switch raw {
	case "ja", "jp", "japanese":
		return LangJapanese
	default:
		return LangEnglish
	}
}

var translations = map[Language]map[string]string{
	LangJapanese: {
		// Common
		"loading":     "読み込み中...",
		"error":       "エラー",
		"refresh":     "更新",
		"processing":  "処理中...",
		"loadingMore": "さらに読み込み中...",

		// Sessions
		"sessions":       "セッション",
		"noSessions":     "まだセッションがないよ",
		"noSessionsHint": "新しいタスクを作ろう！",
		"noApiKey":       "APIキーが設定されていないよ",

		// Session detail
		"noActivities":     "アクティビティがないよ",
		"replyPlaceholder": "Julesに返信...",
		"planSummary":      "Plan Summary",

		// Create session
		"newTask":         "新規タスク",
		"selectRepo":      "リポジトリを選んでね (Source)",
		"promptLabel":     "Julesへのお願い (Prompt)",
		"startSession":    "セッションを開始する",
		"inputError":      "リポジトリを選んで、依頼内容を書いてね！",
		"createSuccess":   "セッションを作成したよ！",
		"noSourcesFound":  "ソースが見つからないよ。GitHub Appのインストールが必要かも。",

		// Session states
		"stateActive":    "処理中",
		"stateCompleted": "完了",
		"stateFailed":    "失敗",
		"stateUnknown":   "作成中",

		// API errors
		"apiKeyNotSet":          "APIキーが設定されていないよ！設定画面で入力してね。",
		"apiError":              "APIエラー",
		"fetchSourcesFailed":    "ソースの取得に失敗したよ",
		"fetchSessionsFailed":   "セッションの取得に失敗したよ",
		"fetchActivitiesFailed": "チャット履歴が見れなかったよ...",
		"approvePlanFailed":     "プランの承認に失敗したよ",
		"createSessionFailed":   "セッションが作れなかったよ",
		"sendMessageFailed":     "メッセージの送信に失敗したよ",
	},
	LangEnglish: {
		// Common
		"loading":     "Loading...",
		"error":       "Error",
		"refresh":     "Refresh",
		"processing":  "Processing...",
		"loadingMore": "Loading more...",

		// Sessions
		"sessions":       "Sessions",
		"noSessions":     "No sessions yet",
		"noSessionsHint": "Create a new task to get started!",
		"noApiKey":       "API key not set",

		// Session detail
		"noActivities":     "No activities",
		"replyPlaceholder": "Reply to Jules...",
		"planSummary":      "Plan Summary",

		// Create session
		"newTask":        "New Task",
		"selectRepo":     "Select Repository (Source)",
		"promptLabel":    "Your Request (Prompt)",
		"startSession":   "Start Session",
		"inputError":     "Please select a repository and enter your request!",
		"createSuccess":  "Session created!",
		"noSourcesFound": "No sources found. You may need to install the GitHub App.",

		// Session states
		"stateActive":    "Processing",
		"stateCompleted": "Completed",
		"stateFailed":    "Failed",
		"stateUnknown":   "Creating",

		// API errors
		"apiKeyNotSet":          "API key not set! Enter it with `jules key set`.",
		"apiError":              "API Error",
		"fetchSourcesFailed":    "Failed to fetch sources",
		"fetchSessionsFailed":   "Failed to fetch sessions",
		"fetchActivitiesFailed": "Failed to fetch chat history...",
		"approvePlanFailed":     "Failed to approve plan",
		"createSessionFailed":   "Failed to create session",
		"sendMessageFailed":     "Failed to send message",
	},
}

// NewTranslator returns a lookup for the given language. Missing keys fall
// back to English, then to the key itself so a typo never renders blank UI.
func NewTranslator(lang Language) Translator {
	table, ok := translations[lang]
	if !ok {
		table = translations[LangEnglish]
	}
	return func(key string) string {
		if v, ok := table[key]; ok {
			return v
		}
		if v, ok := translations[LangEnglish][key]; ok {
			return v
		}
		return key
	}
}
