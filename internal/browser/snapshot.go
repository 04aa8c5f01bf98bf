package browser

// PageSnapshot is the compact, LLM-facing view of the current page.
type PageSnapshot struct {
	URL   string
	Title string
	Tree  string
}

const scrollScript = `() => { window.scrollBy({top: Math.round(window.innerHeight * 0.8), behavior: 'instant'}); }`

// snapshotScript walks the visible DOM and prints an indented outline.
// Interactive elements get a numeric data-ai-id so that later actions can
// target them; links also carry their absolute href. Article paragraphs are
// kept (truncated) because the agent reads news text from them.
const snapshotScript = `() => {
	let nextId = 1;
	const interactiveTags = new Set(['a', 'button', 'input', 'textarea', 'select', 'summary']);
	const skipTags = new Set(['script', 'style', 'svg', 'path', 'noscript', 'iframe', 'canvas']);
	const headingTags = new Set(['h1', 'h2', 'h3', 'h4']);
	const roles = new Set(['button', 'link', 'menuitem', 'tab', 'textbox', 'searchbox', 'combobox']);

	document.querySelectorAll('[data-ai-id]').forEach(el => el.removeAttribute('data-ai-id'));

	function clip(text, max) {
		if (!text) return '';
		const res = text.replace(/\s+/g, ' ').trim();
		return res.length > max ? res.slice(0, max) + '...' : res;
	}

	function quote(value) {
		return '"' + value.replace(/"/g, '\\"') + '"';
	}

	function visible(el) {
		if (!el.getBoundingClientRect) return false;
		if (el.getAttribute('aria-hidden') === 'true') return false;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) return false;
		if (rect.bottom < 0 || rect.top > window.innerHeight * 2) return false;
		const style = window.getComputedStyle(el);
		return style.visibility !== 'hidden' && style.display !== 'none' && style.opacity !== '0';
	}

	function interactive(el, tag) {
		const role = (el.getAttribute('role') || '').toLowerCase();
		return interactiveTags.has(tag) || roles.has(role) || el.onclick != null;
	}

	function describe(el, tag, depth) {
		const id = nextId++;
		el.setAttribute('data-ai-id', String(id));

		const parts = ['<' + tag];
		let label = clip(el.innerText || el.textContent, 120);
		if (!label) label = clip(el.getAttribute('aria-label') || el.getAttribute('title') || el.getAttribute('placeholder'), 120);
		if (label) parts.push('label=' + quote(label));
		if (tag === 'a' && el.href) parts.push('href=' + quote(el.href));
		if (tag === 'input' || tag === 'textarea') {
			const type = (el.getAttribute('type') || 'text').toLowerCase();
			parts.push('type=' + quote(type));
			const val = clip(el.value, 60);
			if (val) parts.push('value=' + quote(val));
		}
		return '  '.repeat(depth) + '[' + id + '] ' + parts.join(' ') + '>\n';
	}

	function walk(node, depth) {
		if (depth > 25) return '';
		if (node.nodeType === Node.TEXT_NODE) {
			const text = clip(node.textContent, 200);
			return text.length > 2 ? '  '.repeat(depth) + text + '\n' : '';
		}
		if (node.nodeType !== Node.ELEMENT_NODE) return '';

		const el = node;
		const tag = el.tagName.toLowerCase();
		if (skipTags.has(tag) || !visible(el)) return '';

		if (interactive(el, tag)) {
			return describe(el, tag, depth);
		}
		if (headingTags.has(tag)) {
			return '  '.repeat(depth) + '<' + tag + '> ' + clip(el.innerText, 200) + '\n';
		}
		if (tag === 'p') {
			return '  '.repeat(depth) + '<p> ' + clip(el.innerText, 400) + '\n';
		}

		let out = '';
		for (const child of el.childNodes) {
			out += walk(child, depth + 1);
		}
		return out;
	}

	return walk(document.body, 0);
}`
