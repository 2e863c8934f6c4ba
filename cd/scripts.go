package cd

import (
	"encoding/json"
	"fmt"

	"promptburner/sora"
)

// resolveJS defines resolve(sel), returning the elements a sora.Selector
// matches and whether each is visible. Text selectors keep only the innermost
// matching elements so a wrapper div does not count twice.
const resolveJS = `
const norm = (s) => (s || "").replace(/\s+/g, " ").trim();
const visible = (el) => {
	const r = el.getBoundingClientRect();
	const s = window.getComputedStyle(el);
	return r.width > 0 && r.height > 0 && s.visibility !== "hidden" && s.display !== "none";
};
const resolve = (sel) => {
	let els = Array.from(document.querySelectorAll(sel.css || "*"));
	if (sel.text) {
		els = els.filter((el) => norm(el.innerText || el.textContent) === sel.text);
		els = els.filter((el) => !els.some((o) => o !== el && el.contains(o)));
	}
	if (sel.hasText) {
		const needle = sel.hasText.toLowerCase();
		els = els.filter((el) => norm(el.textContent).toLowerCase().includes(needle));
	}
	return els.map((el) => ({ el, shown: visible(el) }));
};
const pick = (sel) => {
	const found = resolve(sel);
	const shown = found.filter((f) => f.shown);
	return { found, shown, first: (shown[0] || found[0] || {}).el };
};
`

const locateJS = `(function(sel) {
%s
	const { found, shown, first } = pick(sel);
	return {
		count: found.length,
		visible: shown.length,
		enabled: !!first && !first.disabled && first.getAttribute("aria-disabled") !== "true",
	};
})(%s)`

const clickJS = `(function(sel) {
%s
	const { shown, first } = pick(sel);
	if (!shown.length) {
		return false;
	}
	first.scrollIntoView({ block: "center" });
	first.focus();
	first.click();
	return true;
})(%s)`

// fillJS goes through the native value setter so frameworks that track the
// value themselves see the change, then fires input and change events.
const fillJS = `(function(sel, value) {
%s
	const el = pick(sel).first;
	if (!el) {
		return false;
	}
	const proto = el instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
	const setter = Object.getOwnPropertyDescriptor(proto, "value").set;
	el.focus();
	setter.call(el, value);
	el.dispatchEvent(new Event("input", { bubbles: true }));
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return true;
})(%s, %s)`

type selectorArg struct {
	CSS     string `json:"css,omitempty"`
	Text    string `json:"text,omitempty"`
	HasText string `json:"hasText,omitempty"`
}

// jsLiteral encodes v as a JavaScript expression.
func jsLiteral(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Only strings and selectorArg are passed in.
		panic(err)
	}
	return string(b)
}

func selectorLiteral(sel sora.Selector) string {
	return jsLiteral(selectorArg{CSS: sel.CSS, Text: sel.Text, HasText: sel.HasText})
}

func locateScript(sel sora.Selector) string {
	return fmt.Sprintf(locateJS, resolveJS, selectorLiteral(sel))
}

func clickScript(sel sora.Selector) string {
	return fmt.Sprintf(clickJS, resolveJS, selectorLiteral(sel))
}

func fillScript(sel sora.Selector, value string) string {
	return fmt.Sprintf(fillJS, resolveJS, selectorLiteral(sel), jsLiteral(value))
}
