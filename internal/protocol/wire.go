package protocol

// Command lines written as the first line of every request.
const (
	CommandGetPlatforms   = "c:getPlatforms"
	CommandPreprocess     = "c:preprocess"
	CommandCompileSnippet = "c:compileSnippet"
)

// Control record tags. Binding tags live with their decoders in the binding package.
const (
	TagSnip        = "snip:"
	TagError       = "err:"
	TagShader      = "shader:"
	TagKeywords    = "keywords:"
	TagKeywordsEnd = "keywordsEnd:"
)

// PlatformReportSize is the fixed number of lines in a c:getPlatforms reply.
const PlatformReportSize = 13

// TokenSeparator splits a record line into tokens. Runs of separators yield empty tokens.
const TokenSeparator = " "

// ShutdownLine is written to ask the worker to exit.
const ShutdownLine = ""
