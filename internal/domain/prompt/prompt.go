// Package prompt renders the system prompts sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/appforge/backend/internal/domain/customization"
	"github.com/appforge/backend/internal/domain/fragment"
)

// SystemPrompt instructs the model to answer with exactly one fragment
// targeting one of templates.
func SystemPrompt(templates []fragment.Template) string {
	var b strings.Builder
	b.WriteString("You are a skilled software engineer.\n")
	b.WriteString("You do not make mistakes.\n")
	b.WriteString("Generate a fragment.\n")
	b.WriteString("You can install additional dependencies.\n")
	b.WriteString("Do not touch project dependencies files like package.json, package-lock.json, requirements.txt, etc.\n")
	b.WriteString("You can use one of the following templates:\n")
	for i, t := range templates {
		port := "none"
		if t.Port != nil {
			port = fmt.Sprint(*t.Port)
		}
		fmt.Fprintf(&b, "%d. %s: %q. File: %s. Dependencies installed: %s. Port: %s.\n",
			i+1, t.ID, t.Instructions, t.File, strings.Join(t.Lib, ", "), port)
	}
	b.WriteString("\nReply with a single JSON object and nothing else. Fields:\n")
	b.WriteString(`- "commentary": describe what you are about to do and the steps you will take.` + "\n")
	b.WriteString(`- "template": id of the template used.` + "\n")
	b.WriteString(`- "title": short title of the fragment, at most 3 words.` + "\n")
	b.WriteString(`- "description": short description of the fragment, one sentence.` + "\n")
	b.WriteString(`- "additional_dependencies": list of dependencies to install beyond the template's.` + "\n")
	b.WriteString(`- "has_additional_dependencies": whether the list above is non-empty.` + "\n")
	b.WriteString(`- "install_dependencies_command": command that installs them, e.g. "npm i zod" or "pip install polars".` + "\n")
	b.WriteString(`- "port": port the app listens on, or null.` + "\n")
	b.WriteString(`- "file_path": relative path of the file the code goes to.` + "\n")
	b.WriteString(`- "code": the complete runnable code. Escape it as a JSON string.` + "\n")
	return b.String()
}

// ChatSystemPrompt is the persona of the marketing-site assistant
func ChatSystemPrompt(upsells []customization.UpsellFeature) string {
	var b strings.Builder
	b.WriteString("You are the assistant of an AI app generator. ")
	b.WriteString("Help visitors describe the app or website they want, explain how generation and live previews work, ")
	b.WriteString("and answer pricing questions briefly and honestly.\n")
	b.WriteString("Keep answers short and use markdown for code.\n")
	if len(upsells) > 0 {
		b.WriteString("When it genuinely helps the visitor, you may mention these paid add-ons:\n")
		for _, u := range upsells {
			fmt.Fprintf(&b, "- %s ($%s/month): %s\n", u.Name, u.MonthlyPrice.StringFixed(2), u.Description)
		}
	}
	return b.String()
}
