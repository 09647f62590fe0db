package live

// Wire types for the Gemini BidiGenerateContent WebSocket protocol.
// Field names follow the remote endpoint's camelCase JSON contract.

// Blob is one inline media payload: base64 data plus its MIME type.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one piece of model content.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Content is an ordered sequence of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Schema is the subset of JSON schema the tool declarations need.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// FunctionDeclaration declares one callable tool to the remote model.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Tool groups function declarations.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// SpeechConfig selects the synthesized voice.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

// VoiceConfig names a prebuilt voice.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// PrebuiltVoiceConfig is the prebuilt voice selector.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// GenerationConfig requests response modalities and voice settings.
type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// Setup is the session-open configuration sent as the first client frame.
type Setup struct {
	Model                    string            `json:"model"`
	GenerationConfig         *GenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *Content          `json:"systemInstruction,omitempty"`
	Tools                    []Tool            `json:"tools,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type clientSetupMessage struct {
	Setup Setup `json:"setup"`
}

// RealtimeInput carries outbound media chunks or a text command.
type RealtimeInput struct {
	MediaChunks []Blob `json:"mediaChunks,omitempty"`
	Text        string `json:"text,omitempty"`
}

type clientRealtimeInputMessage struct {
	RealtimeInput RealtimeInput `json:"realtimeInput"`
}

// FunctionResponse confirms one tool invocation back to the model. The ID
// must echo the invocation identifier received in the tool call.
type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// ToolResponse groups function responses.
type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses"`
}

type clientToolResponseMessage struct {
	ToolResponse ToolResponse `json:"toolResponse"`
}

// Transcription is a partial or complete transcript fragment.
type Transcription struct {
	Text     string `json:"text"`
	Finished bool   `json:"finished,omitempty"`
}

// ServerContent is the model-turn portion of an inbound frame.
type ServerContent struct {
	ModelTurn           *Content       `json:"modelTurn,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
}

// FunctionCall is one tool invocation requested by the model.
type FunctionCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolCall carries one or more invocations in a single inbound event.
type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls"`
}

// GoAway announces an imminent server-side disconnect.
type GoAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// serverMessage is the envelope of every inbound text frame. Exactly one
// field is set per frame.
type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
	ToolCall      *ToolCall      `json:"toolCall,omitempty"`
	GoAway        *GoAway        `json:"goAway,omitempty"`
}
