// Package fragment describes the sandbox templates a generated app can target
// and the fragment the model returns for one of them.
package fragment

// CodeInterpreterID is the template executed as a notebook cell instead of served on a port
const CodeInterpreterID = "code-interpreter-v1"

// Template is a sandbox image the model may generate code for
type Template struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Lib          []string `json:"lib"`
	File         string   `json:"file"`
	Instructions string   `json:"instructions"`
	Port         *int     `json:"port"`
}

func port(p int) *int { return &p }

var templates = []Template{
	{
		ID:           CodeInterpreterID,
		Name:         "Python data analyst",
		Lib:          []string{"python", "jupyter", "numpy", "pandas", "matplotlib", "seaborn", "plotly"},
		File:         "script.py",
		Instructions: "Runs code as a Jupyter notebook cell. Strong data analysis angle. Can use complex visualisation to explain results.",
	},
	{
		ID:           "nextjs-developer",
		Name:         "Next.js developer",
		Lib:          []string{"nextjs@14.2.5", "typescript", "@types/node", "@types/react", "@types/react-dom", "postcss", "tailwindcss", "shadcn"},
		File:         "pages/index.tsx",
		Instructions: "A Next.js 13+ app that reloads automatically. Using the pages router.",
		Port:         port(3000),
	},
	{
		ID:           "vue-developer",
		Name:         "Vue.js developer",
		Lib:          []string{"vue@latest", "nuxt@3.13.0", "tailwindcss"},
		File:         "app.vue",
		Instructions: "A Vue.js 3+ app that reloads automatically. Only when asked specifically for a Vue app.",
		Port:         port(3000),
	},
	{
		ID:           "streamlit-developer",
		Name:         "Streamlit developer",
		Lib:          []string{"streamlit", "pandas", "numpy", "matplotlib", "requests", "seaborn", "plotly"},
		File:         "app.py",
		Instructions: "A streamlit app that reloads automatically.",
		Port:         port(8501),
	},
	{
		ID:           "gradio-developer",
		Name:         "Gradio developer",
		Lib:          []string{"gradio", "pandas", "numpy", "matplotlib", "requests", "seaborn", "plotly"},
		File:         "app.py",
		Instructions: "A gradio app. Gradio Blocks/Interface should be called demo.",
		Port:         port(7860),
	},
}

// Templates returns a copy of the catalog in display order
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Lookup finds a template by id
func Lookup(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// IDs lists the template ids in display order
func IDs() []string {
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	return ids
}
