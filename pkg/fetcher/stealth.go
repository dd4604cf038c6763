package fetcher

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript hides the automation markers marketplace bot checks probe
// first. It runs before any page script.
const stealthScript = `
(() => {
  const define = (obj, key, value) =>
    Object.defineProperty(obj, key, { get: () => value, configurable: true });

  define(navigator, 'webdriver', undefined);
  delete Object.getPrototypeOf(navigator).webdriver;

  define(navigator, 'languages', ['ko-KR', 'ko', 'en-US', 'en']);
  define(navigator, 'plugins', [1, 2, 3].map(i => ({ name: 'Plugin ' + i })));
  if (!navigator.hardwareConcurrency) define(navigator, 'hardwareConcurrency', 8);
  if (!navigator.deviceMemory) define(navigator, 'deviceMemory', 8);

  window.chrome = window.chrome || { runtime: {}, app: { isInstalled: false } };

  const query = window.navigator.permissions && window.navigator.permissions.query;
  if (query) {
    window.navigator.permissions.query = (p) =>
      p && p.name === 'notifications'
        ? Promise.resolve({ state: Notification.permission })
        : query.call(window.navigator.permissions, p);
  }
})();
`

// stealthAllocatorOptions are extra Chrome flags for Stealth mode.
func stealthAllocatorOptions() []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("lang", "ko-KR,ko"),
		chromedp.Flag("accept-lang", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"),
	}
}

// injectStealth registers stealthScript for every new document.
func injectStealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})
}
