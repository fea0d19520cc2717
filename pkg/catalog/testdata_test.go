package catalog

const listingHTML = `<!DOCTYPE html>
<html><body>
<ul id="search_result_img_box">
  <li class="search_result_img_box_inner">
    <dl><dd class="work_name"><a href="https://www.dlsite.com/maniax/work/=/product_id/RJ000001.html"> Alpha </a></dd></dl>
  </li>
  <li class="search_result_img_box_inner">
    <dl><dd class="work_name"><a href="/maniax/work/=/product_id/RJ000002.html">Beta</a></dd></dl>
  </li>
  <li class="search_result_img_box_inner">
    <dl><dd class="work_name"><a href="/maniax/work/=/product_id/RJ000003.html"></a></dd></dl>
  </li>
  <li class="search_result_img_box_inner">
    <dl><dd class="work_name"><span>no link</span></dd></dl>
  </li>
  <li class="search_result_img_box_inner">
    <dl><dd class="work_name"><a href="/maniax/work/=/product_id/RJ000004.html">Gamma</a></dd></dl>
  </li>
</ul>
</body></html>`

const detailHTML = `<!DOCTYPE html>
<html><head>
<meta property="og:image" content="//img.dlsite.jp/modpub/images2/work/doujin/RJ123456_img_main.jpg">
</head><body>
<div id="work_image_main"><img src="//img.dlsite.jp/fallback.jpg"></div>
<div class="product-slider-data">
  <div data-src="//img.dlsite.jp/smp1.jpg"></div>
  <div data-src="https://img.dlsite.jp/smp2.jpg"></div>
  <div></div>
</div>
<table id="work_outline">
  <tr><th>販売日</th><td><a href="#">2024年01月01日</a></td></tr>
  <tr><th>作者</th><td><a href="#">Author One</a> / <a href="#">Author Two</a></td></tr>
  <tr><th>ジャンル</th><td>
    <div class="main_genre"><a href="#">Romance</a><a href="#">Comedy</a></div>
    <div class="other_genre"><a href="#">Unrelated</a></div>
  </td></tr>
</table>
<table id="work_maker">
  <tr><th>サークル名</th><td><span class="maker_name"><a href="#">Circle X</a></span></td></tr>
</table>
<div id="intro-title">Intro</div>
<div itemprop="description" class="work_parts_container"><p>Body</p></div>
</body></html>`
