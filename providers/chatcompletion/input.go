package chatcompletion

import (
	"encoding/json"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	advisor "github.com/stgisi414/ai-paper-trader-sub001"
)

// BuildMessages converts a generate request to OpenAI chat completion params.
func BuildMessages(req advisor.GenerateRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{}

	if req.SystemInstruction != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(req.SystemInstruction))
	}

	for _, msg := range req.History {
		switch m := msg.(type) {
		case advisor.UserMessage:
			params.Messages = append(params.Messages, convertUserMessage(m))
		case advisor.ModelMessage:
			params.Messages = append(params.Messages, convertModelMessage(m))
		case advisor.ToolMessage:
			params.Messages = append(params.Messages, convertToolMessage(m)...)
		}
	}

	// Schema mode constrains the reply to JSON and offers no tools.
	if req.ResponseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "response",
					Schema: req.ResponseSchema,
				},
			},
		}
		return params
	}

	for _, spec := range req.Tools {
		params.Tools = append(params.Tools, convertToolSpec(spec))
	}
	if len(params.Tools) > 0 {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
		params.ParallelToolCalls = openai.Bool(true)
	}

	return params
}

func convertUserMessage(m advisor.UserMessage) openai.ChatCompletionMessageParamUnion {
	var parts []openai.ChatCompletionContentPartUnionParam
	for _, part := range m.Parts {
		if p, ok := part.(advisor.TextPart); ok {
			parts = append(parts, openai.TextContentPart(p.Text))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, openai.TextContentPart(""))
	}
	return openai.UserMessage(parts)
}

func convertModelMessage(m advisor.ModelMessage) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionAssistantMessageParam{
		Role: "assistant",
	}

	var textContent string
	var toolCalls []openai.ChatCompletionMessageToolCallUnionParam
	for _, part := range m.Parts {
		switch p := part.(type) {
		case advisor.TextPart:
			textContent += p.Text
		case advisor.FunctionCallPart:
			args, _ := json.Marshal(p.Args)
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: p.CallID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      p.Name,
						Arguments: string(args),
					},
				},
			})
		}
	}

	if textContent != "" {
		msg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(textContent),
		}
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}

// convertToolMessage expands the function responses into individual tool
// messages, one per call ID as the Chat Completions API requires.
func convertToolMessage(m advisor.ToolMessage) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	for _, part := range m.Parts {
		if p, ok := part.(advisor.FunctionResponsePart); ok {
			content, _ := json.Marshal(p.Response)
			out = append(out, openai.ToolMessage(string(content), p.CallID))
		}
	}
	return out
}

func convertToolSpec(spec advisor.ToolSpec) openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
		Name:        spec.Name,
		Description: openai.String(spec.Description),
		Parameters:  shared.FunctionParameters(spec.Schema()),
	})
}
