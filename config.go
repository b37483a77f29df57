package main

const ENV_TWITTER_API_KEY = "twitter_api_key"
const ENV_TWITTER_API_BASE_URL = "twitter_api_base_url"
const ENV_PROXY_DSN = "proxy_dsn"
const ENV_DATABASE_NAME = "database_name"
const ENV_EXECUTION_LOG_DB_PATH = "execution_log_db_path"
const ENV_HTTP_LISTEN_ADDR = "http_listen_addr"
const ENV_TELEGRAM_API_KEY = "telegram_api_key"
const ENV_TELEGRAM_ADMIN_CHAT_ID = "tg_admin_chat_id"
const ENV_IMPORT_CSV_PATH = "import_csv_path"
const ENV_SCHEDULER_POLL_INTERVAL = "scheduler_poll_interval"
const ENV_SCHEDULER_DISABLED = "scheduler_disabled"

// Tweet type constants
const TWEET_TYPE_ORIGINAL = "original"
const TWEET_TYPE_REPLY = "reply"
const TWEET_TYPE_RETWEET = "retweet"
const TWEET_TYPE_QUOTE = "quote"

// Media type constants, classified from the URL extension
const MEDIA_TYPE_PHOTO = "photo"
const MEDIA_TYPE_VIDEO = "video"

// Source platform marker stored on every tweet
const TWEET_SOURCE_X = "x"

// Search limit bounds enforced at the API boundary
const DEFAULT_SEARCH_LIMIT = 50
const MIN_SEARCH_LIMIT = 1
const MAX_SEARCH_LIMIT = 1000

// How many recent tweets are kept per user snapshot
const RECENT_TWEETS_COUNT = 3

// Execution log retention in days for the cleanup scheduler
const EXECUTION_LOG_RETENTION_DAYS = 30
