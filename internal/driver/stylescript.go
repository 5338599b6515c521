package driver

// styleScriptV1 is the in-page style extraction script. Its output shape
// is the palette.StyleSnapshot contract; bump the version when the shape
// changes so snapshot consumers can tell results apart.
//
// Background and text colors fall back up the body -> html chain when the
// computed value is transparent. Candidates are gathered from four
// weighted sources matched by broad attribute/class substrings: call-to-
// action/button-like elements (10), header/nav-like elements (5),
// heading/emphasis elements (2), plain links (1).
const styleScriptV1 = `() => {
	const colorOf = (el, prop) => {
		if (!el) return '';
		try { return getComputedStyle(el)[prop] || ''; } catch (e) { return ''; }
	};
	const transparent = (v) => !v || v === 'transparent' || v === 'rgba(0, 0, 0, 0)';

	let background = colorOf(document.body, 'backgroundColor');
	if (transparent(background)) background = colorOf(document.documentElement, 'backgroundColor');
	let text = colorOf(document.body, 'color');
	if (transparent(text)) text = colorOf(document.documentElement, 'color');

	const themeMeta = document.querySelector('meta[name="theme-color"]');
	const themeColor = themeMeta ? (themeMeta.getAttribute('content') || '') : '';

	const candidates = [];
	const collect = (selector, prop, weight, limit) => {
		let els;
		try { els = document.querySelectorAll(selector); } catch (e) { return; }
		for (let i = 0; i < els.length && i < limit; i++) {
			const v = colorOf(els[i], prop);
			if (!transparent(v)) candidates.push({ value: v, weight: weight });
		}
	};
	collect('button, [role="button"], [class*="btn"], [class*="button"], [class*="cta"]', 'backgroundColor', 10, 20);
	collect('header, nav, [class*="header"], [class*="nav"]', 'backgroundColor', 5, 20);
	collect('h1, h2, h3, strong, em, [class*="accent"], [class*="primary"]', 'color', 2, 30);
	collect('a', 'color', 1, 50);

	return JSON.stringify({ background, text, themeColor, candidates });
}`
