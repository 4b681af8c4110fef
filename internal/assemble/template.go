// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

// DefaultTemplate is written to the template directory when base.html is
// missing. It receives title, svg_contents and photo_filenames. Each page
// sits in its own .svg-container so printing yields one page per sheet.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.title}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background-color: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .svg-container {
            text-align: center;
            margin: 40px 0;
            padding: 20px;
            border-bottom: 1px solid #ddd;
            page-break-after: always;
            break-after: page;
            min-height: 600px;
            display: block;
        }
        .svg-container:last-child {
            border-bottom: none;
            page-break-after: auto;
            break-after: auto;
        }
        .svg-container svg {
            max-width: 100%;
            height: auto;
            display: block;
            margin: 0 auto;
        }
        .photos img {
            max-width: 100%;
            display: block;
            margin: 20px auto;
        }
        h1 {
            color: #333;
            border-bottom: 2px solid #007acc;
            padding-bottom: 10px;
        }
        @media print {
            body, .container {
                background: none;
                box-shadow: none;
                margin: 0;
                padding: 0;
            }
            .svg-container {
                margin: 0;
                padding: 0;
                border: none;
                min-height: 0;
            }
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.title}}</h1>
        {{- range .svg_contents}}
        <div class="svg-container">
            {{.}}
        </div>
        {{- end}}
    </div>
    {{- if .photo_filenames}}
    <div class="container photos">
        {{- range .photo_filenames}}
        <img src="{{.}}" alt="">
        {{- end}}
    </div>
    {{- end}}
</body>
</html>
`
