package utils

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// CardFileName is the attachment name embeds refer to as attachment://.
const CardFileName = "leaderboard.png"

type CardRow struct {
	Rank  int
	Name  string
	Count int
}

const (
	cardWidth   = 640
	cardHeader  = 90
	cardRowH    = 48
	cardPadding = 24
	maxNameLen  = 28
)

var medalColors = map[int]color.Color{
	1: color.RGBA{255, 196, 37, 255},
	2: color.RGBA{192, 199, 208, 255},
	3: color.RGBA{205, 127, 50, 255},
}

// RenderLeaderboard draws the leaderboard as a PNG.
func RenderLeaderboard(title string, rows []CardRow) ([]byte, error) {
	height := cardHeader + cardRowH*len(rows) + cardPadding
	if len(rows) == 0 {
		height += cardRowH
	}
	dc := gg.NewContext(cardWidth, height)

	grad := gg.NewLinearGradient(0, 0, cardWidth, float64(height))
	grad.AddColorStop(0, color.RGBA{35, 39, 42, 255})
	grad.AddColorStop(1, color.RGBA{47, 49, 54, 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, cardWidth, float64(height))
	dc.Fill()

	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	dc.SetFontFace(truetype.NewFace(bold, &truetype.Options{Size: 30}))
	dc.SetColor(color.White)
	dc.DrawStringAnchored(title, cardWidth/2, cardHeader/2, 0.5, 0.5)

	dc.SetColor(color.RGBA{88, 101, 242, 255})
	dc.SetLineWidth(3)
	dc.DrawLine(cardPadding, cardHeader-10, cardWidth-cardPadding, cardHeader-10)
	dc.Stroke()

	face := truetype.NewFace(regular, &truetype.Options{Size: 22})
	boldFace := truetype.NewFace(bold, &truetype.Options{Size: 22})

	if len(rows) == 0 {
		dc.SetFontFace(face)
		dc.SetColor(color.RGBA{185, 187, 190, 255})
		dc.DrawStringAnchored("No invites yet", cardWidth/2, cardHeader+cardRowH/2, 0.5, 0.5)
	}

	for i, r := range rows {
		y := float64(cardHeader + i*cardRowH)
		mid := y + cardRowH/2

		if i%2 == 0 {
			dc.SetColor(color.RGBA{255, 255, 255, 12})
			dc.DrawRoundedRectangle(cardPadding/2, y+4, cardWidth-cardPadding, cardRowH-8, 8)
			dc.Fill()
		}

		if c, ok := medalColors[r.Rank]; ok {
			dc.SetColor(c)
			dc.DrawCircle(cardPadding+18, mid, 16)
			dc.Fill()
			dc.SetColor(color.RGBA{35, 39, 42, 255})
		} else {
			dc.SetColor(color.RGBA{185, 187, 190, 255})
		}
		dc.SetFontFace(boldFace)
		dc.DrawStringAnchored(strconv.Itoa(r.Rank), cardPadding+18, mid, 0.5, 0.5)

		dc.SetFontFace(face)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(truncate(r.Name, maxNameLen), cardPadding+52, mid, 0, 0.5)

		dc.SetFontFace(boldFace)
		dc.SetColor(color.RGBA{87, 242, 135, 255})
		dc.DrawStringAnchored(fmt.Sprintf("%d invites", r.Count), cardWidth-cardPadding, mid, 1, 0.5)
	}

	buf := new(bytes.Buffer)
	if err := dc.EncodePNG(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
