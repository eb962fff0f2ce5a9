package browser

// Probe lists for the watch page, ordered most-specific first. Selector
// churn on the video host is absorbed here.

var consentCandidates = []Candidate{
	{Name: "accept-all", Selector: `button[aria-label="Accept all"]`},
	{Name: "cta-button", Selector: `button.yt-spec-button-shape-next--call-to-action`},
	{Name: "consent-form", Selector: `form[action="https://consent.youtube.com/s"] button`},
	{Name: "accept-cookies", Selector: `button[aria-label="Accept the use of cookies and other data"]`},
	{Name: "consent-bump", Selector: `ytd-button-renderer ytd-consent-bump-v2-lightbox paper-button`},
	{Name: "eom-accept", Selector: `#content > div.body-wrapper > div.eom-buttons > ytd-button-renderer:nth-child(2) > a`},
}

var captchaCandidates = []Candidate{
	{Name: "captcha-id", Selector: `#captcha`},
	{Name: "captcha-iframe", Selector: `iframe[src*="captcha"]`},
	{Name: "captcha-class", Selector: `div[class*="captcha"]`},
	{Name: "captcha-data", Selector: `div[data-captcha]`},
}

var playCandidates = []Candidate{
	{Name: "play-button", Selector: `.ytp-play-button`},
	{Name: "play-button-el", Selector: `button.ytp-play-button`},
	{Name: "large-play", Selector: `.ytp-large-play-button`},
	{Name: "large-play-el", Selector: `button.ytp-large-play-button`},
	{Name: "play-aria", Selector: `.ytp-play-button[aria-label^='Play'], .ytp-play-button[aria-label^='Phát']`},
	{Name: "play-title", Selector: `.ytp-play-button[title^='Play'], .ytp-play-button[title^='Phát']`},
	{Name: "player", Selector: `#movie_player`},
}

var pausedCandidates = []Candidate{
	{Name: "pause-title", Selector: `.ytp-play-button[title^="Pause"]`},
	{Name: "pause-aria", Selector: `.ytp-play-button[aria-label^="Pause"]`},
	{Name: "pause-title-vi", Selector: `.ytp-play-button[title^="Tạm dừng"]`},
	{Name: "pause-aria-vi", Selector: `.ytp-play-button[aria-label^="Tạm dừng"]`},
	{Name: "pause-title-pt", Selector: `.ytp-play-button[title="Pausar"]`},
	{Name: "pause-title-it", Selector: `.ytp-play-button[title="Pausa"]`},
}

var titleSelectors = []string{
	`h1.ytd-watch-metadata`,
	`h1.title`,
	`h1 yt-formatted-string`,
	`.title.style-scope.ytd-video-primary-info-renderer`,
	`#container > h1`,
	`ytd-watch-metadata h1`,
	`ytd-watch-flexy h1`,
}

var channelSelectors = []string{
	`ytd-channel-name #container #text`,
	`.ytd-channel-name a`,
	`#owner-container a`,
	`#channel-name a`,
	`ytd-video-owner-renderer a`,
	`.ytd-channel-name yt-formatted-string`,
	`#owner-sub-container a`,
}

// playingExpr checks playback through the native video element first, then
// the embedded player API.
const playingExpr = `(() => {
  const video = document.querySelector("video");
  if (video) {
    return !video.paused && video.readyState > 2;
  }
  try {
    const player = window.ytplayer || document.getElementById("movie_player");
    if (player && typeof player.getPlayerState === "function") {
      return player.getPlayerState() === 1;
    }
  } catch (e) {}
  return false;
})()`

const captchaFrameSrcExpr = `(() => {
  const frame = document.querySelector('iframe[src*="captcha"]');
  return frame ? frame.src : "";
})()`

const pageURLExpr = `window.location.href`
